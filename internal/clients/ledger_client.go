package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/dexboard/internal/domain"
)

// maxLedgerPages bounds cursor pagination of a single feed.
const maxLedgerPages = 10

// LedgerClient reads transfer feeds from a Moralis-style indexer.
type LedgerClient struct {
	rest     restClient
	pageSize int
}

// NewLedgerClient creates a ledger client. pageSize <= 0 leaves the page size to the indexer.
func NewLedgerClient(baseURL, apiKey string, timeout time.Duration, pageSize int) *LedgerClient {
	return &LedgerClient{
		rest:     newRestClient(baseURL, timeout, map[string]string{"X-API-Key": apiKey}),
		pageSize: pageSize,
	}
}

// transfersPath builds the feed path of a validated address.
func transfersPath(address, feed string) (string, error) {
	addr, ok := domain.NormalizeAddress(address)
	if !ok {
		return "", errors.Wrapf(domain.ErrInvalidSession, "account %q is not an address", address)
	}
	return "/" + url.PathEscape(addr) + "/" + feed + "/transfers", nil
}

type page struct {
	Cursor string          `json:"cursor"`
	Result json.RawMessage `json:"result"`
}

// ERC20Transfers returns ERC20 transfers of address on chain in indexer order.
func (c *LedgerClient) ERC20Transfers(ctx context.Context, chain, address string) ([]domain.ERC20Transfer, error) {
	path, err := transfersPath(address, "erc20")
	if err != nil {
		return nil, err
	}

	var out []domain.ERC20Transfer
	err = c.paginate(ctx, path, chain, func(raw json.RawMessage) error {
		var batch []domain.ERC20Transfer
		if err := json.Unmarshal(raw, &batch); err != nil {
			return errors.Wrap(err, "failed to unmarshal erc20 transfers")
		}
		out = append(out, batch...)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "erc20 transfers of %s", address)
	}
	return out, nil
}

// NFTTransfers returns NFT transfers of address on chain in indexer order.
func (c *LedgerClient) NFTTransfers(ctx context.Context, chain, address string) ([]domain.NFTTransfer, error) {
	path, err := transfersPath(address, "nft")
	if err != nil {
		return nil, err
	}

	var out []domain.NFTTransfer
	err = c.paginate(ctx, path, chain, func(raw json.RawMessage) error {
		var batch []domain.NFTTransfer
		if err := json.Unmarshal(raw, &batch); err != nil {
			return errors.Wrap(err, "failed to unmarshal nft transfers")
		}
		out = append(out, batch...)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "nft transfers of %s", address)
	}
	return out, nil
}

func (c *LedgerClient) paginate(ctx context.Context, path, chain string, consume func(json.RawMessage) error) error {
	cursor := ""
	for i := 0; i < maxLedgerPages; i++ {
		query := url.Values{}
		query.Set("chain", chain)
		if c.pageSize > 0 {
			query.Set("limit", strconv.Itoa(c.pageSize))
		}
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var p page
		if err := c.rest.doJSON(ctx, http.MethodGet, path, query, nil, &p); err != nil {
			return err
		}
		if len(p.Result) > 0 && string(p.Result) != "null" {
			if err := consume(p.Result); err != nil {
				return err
			}
		}
		if p.Cursor == "" {
			return nil
		}
		cursor = p.Cursor
	}
	return nil
}
