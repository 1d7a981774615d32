package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/dexboard/internal/domain"
)

// AggregatorClient talks to a 1inch-style swap aggregator. Chain ids are sent as decimal path segments.
type AggregatorClient struct {
	rest restClient
}

// NewAggregatorClient creates a client for the aggregator at baseURL. apiKey may be empty.
func NewAggregatorClient(baseURL, apiKey string, timeout time.Duration) *AggregatorClient {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = fmt.Sprintf("Bearer %s", apiKey)
	}
	return &AggregatorClient{rest: newRestClient(baseURL, timeout, headers)}
}

type tokenListResponse struct {
	Tokens json.RawMessage `json:"tokens"`
}

type quoteResponse struct {
	EstimatedGas    flexUint     `json:"estimatedGas"`
	FromTokenAmount string       `json:"fromTokenAmount"`
	ToTokenAmount   string       `json:"toTokenAmount"`
	FromToken       domain.Token `json:"fromToken"`
	ToToken         domain.Token `json:"toToken"`
}

type allowanceResponse struct {
	Allowance json.RawMessage `json:"allowance"`
}

type swapBody struct {
	StatusCode      *int   `json:"statusCode"`
	TransactionHash string `json:"transactionHash"`
	Tx              *struct {
		Hash string `json:"hash"`
	} `json:"tx"`
}

// GetSupportedTokens returns the raw token list of chain. The aggregator may answer with
// an array or with an address-keyed object.
func (c *AggregatorClient) GetSupportedTokens(ctx context.Context, chain string) ([]domain.Token, error) {
	path, err := chainPath(chain, "/tokens")
	if err != nil {
		return nil, err
	}

	var resp tokenListResponse
	if err := c.rest.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, errors.Wrapf(err, "get tokens for chain %s", chain)
	}

	return decodeTokens(resp.Tokens)
}

// Quote prices intent.
func (c *AggregatorClient) Quote(ctx context.Context, intent domain.TradeIntent) (domain.Quote, error) {
	path, err := chainPath(intent.Chain, "/quote")
	if err != nil {
		return domain.Quote{}, err
	}

	query := url.Values{}
	query.Set("fromTokenAddress", intent.FromTokenAddress)
	query.Set("toTokenAddress", intent.ToTokenAddress)
	query.Set("amount", intent.AmountRaw)

	var resp quoteResponse
	if err := c.rest.doJSON(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return domain.Quote{}, errors.Wrap(err, "get quote")
	}

	return domain.Quote{
		EstimatedGas:    uint64(resp.EstimatedGas),
		FromTokenAmount: resp.FromTokenAmount,
		ToTokenAmount:   resp.ToTokenAmount,
		FromToken:       lowerToken(resp.FromToken),
		ToToken:         lowerToken(resp.ToToken),
	}, nil
}

// HasAllowance fetches the allowance the account granted to the aggregator spender.
func (c *AggregatorClient) HasAllowance(ctx context.Context, req domain.AllowanceRequest) (domain.Allowance, error) {
	path, err := chainPath(req.Chain, "/approve/allowance")
	if err != nil {
		return domain.Allowance{}, err
	}

	query := url.Values{}
	query.Set("tokenAddress", req.TokenAddress)
	query.Set("walletAddress", req.Account)
	if req.Amount != "" {
		query.Set("amount", req.Amount)
	}

	var resp allowanceResponse
	if err := c.rest.doJSON(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return domain.Allowance{}, errors.Wrap(err, "get allowance")
	}

	return decodeAllowance(resp.Allowance)
}

// Approve requests a spending approval for token.
func (c *AggregatorClient) Approve(ctx context.Context, req domain.ApproveRequest) (domain.ApprovalReceipt, error) {
	path, err := chainPath(req.Chain, "/approve")
	if err != nil {
		return domain.ApprovalReceipt{}, err
	}

	var receipt domain.ApprovalReceipt
	if err := c.rest.doJSON(ctx, http.MethodPost, path, nil, req, &receipt); err != nil {
		return domain.ApprovalReceipt{}, errors.Wrap(err, "approve")
	}
	return receipt, nil
}

// Swap submits a swap. Any HTTP answer is returned as a SwapResponse without error; a
// statusCode field in the body takes precedence over the HTTP status.
func (c *AggregatorClient) Swap(ctx context.Context, req domain.SwapRequest) (domain.SwapResponse, error) {
	path, err := chainPath(req.Chain, "/swap")
	if err != nil {
		return domain.SwapResponse{}, err
	}

	query := url.Values{}
	query.Set("fromTokenAddress", req.FromTokenAddress)
	query.Set("toTokenAddress", req.ToTokenAddress)
	query.Set("amount", req.Amount)
	query.Set("fromAddress", req.FromAddress)
	query.Set("slippage", req.Slippage)

	status, payload, err := c.rest.send(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return domain.SwapResponse{}, errors.Wrap(err, "swap")
	}

	resp := domain.SwapResponse{StatusCode: status}
	if json.Valid(payload) {
		resp.Raw = json.RawMessage(payload)
	}

	var body swapBody
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.StatusCode != nil {
			resp.StatusCode = *body.StatusCode
		}
		resp.TxHash = body.TransactionHash
		if resp.TxHash == "" && body.Tx != nil {
			resp.TxHash = body.Tx.Hash
		}
	}
	if !domain.SwapSucceeded(resp.StatusCode) {
		resp.Message = errorMessage(payload)
	}

	return resp, nil
}

func chainPath(chain, suffix string) (string, error) {
	n, err := domain.ChainNumber(chain)
	if err != nil {
		return "", err
	}
	return "/" + strconv.FormatUint(n, 10) + suffix, nil
}

func decodeTokens(raw json.RawMessage) ([]domain.Token, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []domain.Token{}, nil
	}

	var list []domain.Token
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var byAddress map[string]domain.Token
	if err := json.Unmarshal(raw, &byAddress); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal token list")
	}

	list = make([]domain.Token, 0, len(byAddress))
	for addr, token := range byAddress {
		if token.Address == "" {
			token.Address = addr
		}
		list = append(list, token)
	}
	return list, nil
}

func decodeAllowance(raw json.RawMessage) (domain.Allowance, error) {
	var approved bool
	if err := json.Unmarshal(raw, &approved); err == nil {
		return domain.Allowance{Approved: &approved}, nil
	}

	var amount string
	if err := json.Unmarshal(raw, &amount); err == nil {
		return domain.Allowance{Amount: amount}, nil
	}

	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		return domain.Allowance{Amount: number.String()}, nil
	}

	return domain.Allowance{}, errors.Errorf("unexpected allowance value %s", string(raw))
}

func lowerToken(t domain.Token) domain.Token {
	t.Address = strings.ToLower(t.Address)
	return t
}

// flexUint accepts numbers and numeric strings.
type flexUint uint64

func (f *flexUint) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parse %s", s)
	}
	*f = flexUint(n)
	return nil
}
