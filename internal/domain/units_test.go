package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRaw(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int32
		expected string
		wantErr  bool
	}{
		{name: "native 1.5", amount: "1.5", decimals: 18, expected: "1500000000000000000"},
		{name: "usdc whole", amount: "3", decimals: 6, expected: "3000000"},
		{name: "smallest unit", amount: "0.000001", decimals: 6, expected: "1"},
		{name: "surrounding spaces", amount: " 2.25 ", decimals: 2, expected: "225"},
		{name: "zero decimals", amount: "7", decimals: 0, expected: "7"},
		{name: "too many fractional digits", amount: "0.0000001", decimals: 6, wantErr: true},
		{name: "empty", amount: "", decimals: 18, wantErr: true},
		{name: "zero", amount: "0", decimals: 18, wantErr: true},
		{name: "negative", amount: "-1", decimals: 18, wantErr: true},
		{name: "garbage", amount: "abc", decimals: 18, wantErr: true},
		{name: "trailing fractional zeros", amount: "1.50", decimals: 1, expected: "15"},
		{name: "leading dot", amount: ".5", decimals: 1, wantErr: true},
		{name: "trailing dot", amount: "2.", decimals: 2, wantErr: true},
		{name: "exponent", amount: "1e3", decimals: 18, wantErr: true},
		{name: "huge exponent", amount: "1e20000000", decimals: 18, wantErr: true},
		{name: "plus sign", amount: "+1", decimals: 18, wantErr: true},
		{name: "two dots", amount: "1.2.3", decimals: 18, wantErr: true},
		{name: "wider than uint256", amount: strings.Repeat("9", 61), decimals: 18, wantErr: true},
		{name: "longest accepted", amount: strings.Repeat("9", 60), decimals: 18, expected: strings.Repeat("9", 60) + strings.Repeat("0", 18)},
		{name: "overlong input", amount: "0." + strings.Repeat("0", 100) + "1", decimals: 18, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ToRaw(tt.amount, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, raw)
		})
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		raw      string
		decimals int32
		expected string
	}{
		{raw: "3000000", decimals: 6, expected: "3.0"},
		{raw: "1500000000000000000", decimals: 18, expected: "1.5"},
		{raw: "1", decimals: 6, expected: "0.000001"},
		{raw: "42", decimals: 0, expected: "42.0"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := FormatUnits(tt.raw, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := FormatUnits("1.5", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestIsPositiveInteger(t *testing.T) {
	assert.True(t, IsPositiveInteger("1500000000000000000"))
	assert.False(t, IsPositiveInteger("0"))
	assert.False(t, IsPositiveInteger("-5"))
	assert.False(t, IsPositiveInteger("1.5"))
	assert.False(t, IsPositiveInteger(""))
}

func TestToRawRejectsExponentQuickly(t *testing.T) {
	start := time.Now()
	_, err := ToRaw("1e20000000", 18)
	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRawIntegerBounds(t *testing.T) {
	assert.False(t, IsPositiveInteger("1e30"))
	assert.False(t, IsPositiveInteger(strings.Repeat("1", 79)))
	assert.True(t, IsPositiveInteger(strings.Repeat("1", 78)))
	assert.False(t, IsPositiveInteger("000"))

	_, err := FromRaw("5e9000000", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
