package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultTokenDecimals   = 18
	nativeCurrencyDecimals = 18
)

// TransferType kind of the transferred asset.
type TransferType string

const (
	TransferERC20 TransferType = "ERC20"
	TransferNFT   TransferType = "NFT"
)

// String returns the string representation.
func (t TransferType) String() string {
	return string(t)
}

// GenericTransfer normalized transfer record shown in the history ledger.
type GenericTransfer struct {
	Type            TransferType `json:"type"`
	TokenAddress    string       `json:"tokenAddress"`
	FromAddress     string       `json:"fromAddress"`
	ToAddress       string       `json:"toAddress"`
	ValueRaw        string       `json:"value"`
	Decimals        int32        `json:"decimals"`
	BlockTimestamp  time.Time    `json:"blockTimestamp"`
	TransactionHash string       `json:"transactionHash"`
	TokenID         string       `json:"tokenId,omitempty"`
}

// Value returns the transferred value scaled by Decimals.
func (t GenericTransfer) Value() (decimal.Decimal, error) {
	if strings.TrimSpace(t.ValueRaw) == "" {
		return decimal.Zero, nil
	}
	return FromRaw(t.ValueRaw, t.Decimals)
}

// Key identifies the row in a rendered ledger.
func (t GenericTransfer) Key() string {
	return string(t.Type) + "-" + t.TransactionHash
}

// ERC20Transfer fungible transfer record as reported by the indexer.
type ERC20Transfer struct {
	TransactionHash string    `json:"transaction_hash"`
	Address         string    `json:"address"`
	BlockTimestamp  time.Time `json:"block_timestamp"`
	BlockNumber     string    `json:"block_number"`
	ToAddress       string    `json:"to_address"`
	FromAddress     string    `json:"from_address"`
	Value           string    `json:"value"`
	TokenDecimals   string    `json:"token_decimals,omitempty"`
	TokenSymbol     string    `json:"token_symbol,omitempty"`
}

// Generic normalizes the record.
func (r ERC20Transfer) Generic() GenericTransfer {
	decimals := int32(defaultTokenDecimals)
	if r.TokenDecimals != "" {
		if d, err := strconv.ParseInt(strings.TrimSpace(r.TokenDecimals), 10, 32); err == nil && d >= 0 {
			decimals = int32(d)
		}
	}

	return GenericTransfer{
		Type:            TransferERC20,
		TokenAddress:    strings.ToLower(r.Address),
		FromAddress:     strings.ToLower(r.FromAddress),
		ToAddress:       strings.ToLower(r.ToAddress),
		ValueRaw:        r.Value,
		Decimals:        decimals,
		BlockTimestamp:  r.BlockTimestamp,
		TransactionHash: r.TransactionHash,
	}
}

// NFTTransfer non-fungible transfer record as reported by the indexer.
type NFTTransfer struct {
	TransactionHash string    `json:"transaction_hash"`
	TokenAddress    string    `json:"token_address"`
	TokenID         string    `json:"token_id"`
	BlockTimestamp  time.Time `json:"block_timestamp"`
	BlockNumber     string    `json:"block_number"`
	ToAddress       string    `json:"to_address"`
	FromAddress     string    `json:"from_address"`
	Value           string    `json:"value"`
	Amount          string    `json:"amount"`
	ContractType    string    `json:"contract_type"`
}

// Generic normalizes the record. Value is the native currency paid for the token.
func (r NFTTransfer) Generic() GenericTransfer {
	return GenericTransfer{
		Type:            TransferNFT,
		TokenAddress:    strings.ToLower(r.TokenAddress),
		FromAddress:     strings.ToLower(r.FromAddress),
		ToAddress:       strings.ToLower(r.ToAddress),
		ValueRaw:        r.Value,
		Decimals:        nativeCurrencyDecimals,
		BlockTimestamp:  r.BlockTimestamp,
		TransactionHash: r.TransactionHash,
		TokenID:         r.TokenID,
	}
}
