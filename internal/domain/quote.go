package domain

import (
	"github.com/shopspring/decimal"
)

// Quote aggregator estimate for a TradeIntent.
type Quote struct {
	EstimatedGas    uint64 `json:"estimatedGas"`
	FromTokenAmount string `json:"fromTokenAmount"`
	ToTokenAmount   string `json:"toTokenAmount"`
	FromToken       Token  `json:"fromToken"`
	ToToken         Token  `json:"toToken"`
}

// Matches reports whether the quote was produced for the intent.
func (q Quote) Matches(i TradeIntent) bool {
	if !SameAddress(q.FromToken.Address, i.FromTokenAddress) || !SameAddress(q.ToToken.Address, i.ToTokenAddress) {
		return false
	}
	if q.FromTokenAmount == "" {
		return true
	}

	quoted, err := decimal.NewFromString(q.FromTokenAmount)
	if err != nil {
		return false
	}
	requested, err := decimal.NewFromString(i.AmountRaw)
	if err != nil {
		return false
	}
	return quoted.Equal(requested)
}

// OutputAmount is the destination amount scaled by the destination token decimals.
func (q Quote) OutputAmount() (string, error) {
	return FormatUnits(q.ToTokenAmount, q.ToToken.Decimals)
}

// InputAmount is the source amount scaled by the source token decimals.
func (q Quote) InputAmount() (string, error) {
	return FormatUnits(q.FromTokenAmount, q.FromToken.Decimals)
}

// Rate returns how many destination tokens one source token buys.
func (q Quote) Rate() (decimal.Decimal, error) {
	in, err := FromRaw(q.FromTokenAmount, q.FromToken.Decimals)
	if err != nil {
		return decimal.Zero, err
	}
	out, err := FromRaw(q.ToTokenAmount, q.ToToken.Decimals)
	if err != nil {
		return decimal.Zero, err
	}
	if in.IsZero() {
		return decimal.Zero, nil
	}
	return out.Div(in), nil
}
