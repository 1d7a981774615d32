package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Changes(t *testing.T) {
	s := NewSession("0xABC", "0x1", true)
	other := NewSession("0xABC", "0x89", true)

	assert.Equal(t, "0x1", s.ChainID)
	assert.Equal(t, "0x89", other.ChainID)
	assert.True(t, s.ChainChanged(other))
	assert.False(t, s.AccountChanged(other))

	moved := NewSession("0xdef", "0x1", true)
	assert.True(t, s.AccountChanged(moved))
	assert.Equal(t, "0xabc", s.Account)

	assert.False(t, s.WithAuthenticated(false).IsAuthenticated)
}

func TestSession_Auth(t *testing.T) {
	s := NewSession("0x00000000000000000000000000000000000000aa", "0x1", true)
	assert.True(t, s.CanTrade())

	out := s.WithAuthenticated(false)
	assert.True(t, s.AuthChanged(out))
	assert.False(t, out.CanTrade())
	assert.False(t, s.AccountChanged(out))

	assert.False(t, NewSession("", "0x1", true).CanTrade())
}

func TestSession_Validate(t *testing.T) {
	assert.NoError(t, NewSession("", "", false).Validate())
	assert.NoError(t, NewSession("0x00000000000000000000000000000000000000AA", "0x89", true).Validate())

	for _, s := range []Session{
		NewSession("0xabc/erc20?x=1", "0x1", true),
		NewSession("../admin", "0x1", true),
		NewSession("0x00000000000000000000000000000000000000aa", "mainnet", true),
	} {
		assert.ErrorIs(t, s.Validate(), ErrInvalidSession, s.Account)
	}
}

func TestChainNumber(t *testing.T) {
	tests := []struct {
		in       string
		expected uint64
		wantErr  bool
	}{
		{in: "0x1", expected: 1},
		{in: "0x89", expected: 137},
		{in: "56", expected: 56},
		{in: "0xzz", wantErr: true},
		{in: "eth", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := ChainNumber(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	addr, ok := NormalizeAddress(" 0xA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48 ")
	require.True(t, ok)
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", addr)

	_, ok = NormalizeAddress("0x123")
	assert.False(t, ok)

	assert.True(t, IsNativeAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"))
}

func TestSwapSucceeded(t *testing.T) {
	assert.True(t, SwapSucceeded(200))
	assert.True(t, SwapSucceeded(201))
	assert.False(t, SwapSucceeded(400))
	assert.False(t, SwapSucceeded(500))
}

func TestChainTxURL(t *testing.T) {
	eth, ok := LookupChain(KnownChains, "0X1")
	require.True(t, ok)
	assert.Equal(t, "https://etherscan.io/tx/0xabc", eth.TxURL("0xabc"))
	assert.Empty(t, eth.TxURL(""))

	_, ok = LookupChain(KnownChains, "0x2")
	assert.False(t, ok)
}
