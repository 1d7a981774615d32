// Package domain defines core data structures shared by the swap pipeline and the transfer history.
package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeAddress is the reserved address aggregators use for a chain's base currency.
const NativeAddress = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// Token swappable asset on a chain.
type Token struct {
	// Address contract address, lower case. NativeAddress for the base currency.
	Address string `json:"address"`
	// Symbol ticker, e.g. USDC.
	Symbol string `json:"symbol"`
	// Name human-readable name.
	Name string `json:"name"`
	// Decimals number of fractional digits of the raw integer amount.
	Decimals int32 `json:"decimals"`
	// LogoURI optional icon location.
	LogoURI string `json:"logoURI,omitempty"`
}

// IsNative reports whether the token is the chain's base currency.
func (t Token) IsNative() bool {
	return IsNativeAddress(t.Address)
}

// IsZero reports whether no token is set.
func (t Token) IsZero() bool {
	return strings.TrimSpace(t.Address) == ""
}

// String returns the symbol, falling back to the address.
func (t Token) String() string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Address
}

// IsNativeAddress reports whether addr is the native asset sentinel.
func IsNativeAddress(addr string) bool {
	return strings.EqualFold(strings.TrimSpace(addr), NativeAddress)
}

// NormalizeAddress validates a hex address and returns it lower-cased.
func NormalizeAddress(addr string) (string, bool) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return "", false
	}
	return strings.ToLower(common.HexToAddress(addr).Hex()), true
}

// SameAddress compares two addresses ignoring case and surrounding spaces.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
