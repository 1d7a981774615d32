package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// TradeIntent fully specified swap request before pricing.
type TradeIntent struct {
	// Chain chain id in hex form, e.g. 0x1.
	Chain string `json:"chain"`
	// FromTokenAddress token being sold.
	FromTokenAddress string `json:"fromTokenAddress"`
	// ToTokenAddress token being bought.
	ToTokenAddress string `json:"toTokenAddress"`
	// AmountRaw source amount scaled by the source token decimals.
	AmountRaw string `json:"amount"`
}

// NewTradeIntent scales amount by the source token decimals and builds an intent.
func NewTradeIntent(chain string, from, to Token, amount string) (TradeIntent, error) {
	if from.IsZero() || to.IsZero() {
		return TradeIntent{}, errors.Wrap(ErrInvalidIntent, "both tokens must be selected")
	}

	raw, err := ToRaw(amount, from.Decimals)
	if err != nil {
		return TradeIntent{}, err
	}

	intent := TradeIntent{
		Chain:            strings.ToLower(strings.TrimSpace(chain)),
		FromTokenAddress: strings.ToLower(from.Address),
		ToTokenAddress:   strings.ToLower(to.Address),
		AmountRaw:        raw,
	}

	return intent, intent.Validate()
}

// Validate checks the intent preconditions shared by quote and swap.
func (i TradeIntent) Validate() error {
	if i.Chain == "" {
		return errors.Wrap(ErrInvalidIntent, "chain is empty")
	}
	if i.FromTokenAddress == "" || i.ToTokenAddress == "" {
		return errors.Wrap(ErrInvalidIntent, "token address is empty")
	}
	if SameAddress(i.FromTokenAddress, i.ToTokenAddress) {
		return errors.Wrap(ErrInvalidIntent, "source and destination tokens are the same")
	}
	if !IsPositiveInteger(i.AmountRaw) {
		return errors.Wrapf(ErrInvalidIntent, "amount %q is not a positive integer", i.AmountRaw)
	}
	return nil
}

// Equal compares chain, token pair and raw amount.
func (i TradeIntent) Equal(o TradeIntent) bool {
	return strings.EqualFold(i.Chain, o.Chain) &&
		SameAddress(i.FromTokenAddress, o.FromTokenAddress) &&
		SameAddress(i.ToTokenAddress, o.ToTokenAddress) &&
		i.AmountRaw == o.AmountRaw
}

// FromNative reports whether the source token is the native asset.
func (i TradeIntent) FromNative() bool {
	return IsNativeAddress(i.FromTokenAddress)
}

// String returns a human-readable string representation.
func (i TradeIntent) String() string {
	return fmt.Sprintf("%s %s -> %s amount: %s", i.Chain, i.FromTokenAddress, i.ToTokenAddress, i.AmountRaw)
}
