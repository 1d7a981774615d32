package swap

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/mocks"
	"go.uber.org/zap"
)

const account = "0x00000000000000000000000000000000000000aa"

var intent = domain.TradeIntent{
	Chain:            "0x1",
	FromTokenAddress: domain.NativeAddress,
	ToTokenAddress:   "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
	AmountRaw:        "1500000000000000000",
}

func TestSwapSuccess(t *testing.T) {
	agg := &mocks.Aggregator{}
	agg.On("Swap", mock.Anything, domain.SwapRequest{
		Chain:            intent.Chain,
		FromTokenAddress: intent.FromTokenAddress,
		ToTokenAddress:   intent.ToTokenAddress,
		Amount:           intent.AmountRaw,
		FromAddress:      account,
		Slippage:         "0.5",
	}).Return(domain.SwapResponse{StatusCode: http.StatusOK, TxHash: "0x01", Raw: json.RawMessage(`{}`)}, nil)

	e := NewExecutor(zap.NewNop(), agg)
	result, err := e.Swap(context.Background(), intent, account, 50)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "0x01", result.TxHash)
	agg.AssertExpectations(t)
}

func TestSwapStatus400IsFailure(t *testing.T) {
	agg := &mocks.Aggregator{}
	agg.On("Swap", mock.Anything, mock.Anything).Return(domain.SwapResponse{StatusCode: http.StatusBadRequest, Message: "not enough balance"}, nil)

	e := NewExecutor(zap.NewNop(), agg)
	result, err := e.Swap(context.Background(), intent, account, 100)
	assert.False(t, result.Success)
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	assert.True(t, errors.Is(err, domain.ErrSwapRejected))
	assert.Contains(t, err.Error(), "not enough balance")
}

func TestSwapServerErrorIsFailure(t *testing.T) {
	agg := &mocks.Aggregator{}
	agg.On("Swap", mock.Anything, mock.Anything).Return(domain.SwapResponse{StatusCode: http.StatusInternalServerError}, nil)

	e := NewExecutor(zap.NewNop(), agg)
	result, err := e.Swap(context.Background(), intent, account, 100)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(err, domain.ErrSwapRejected))
	assert.Contains(t, err.Error(), "Internal Server Error")
}

func TestSwapThrown(t *testing.T) {
	agg := &mocks.Aggregator{}
	agg.On("Swap", mock.Anything, mock.Anything).Return(domain.SwapResponse{}, errors.Wrap(domain.ErrServiceUnavailable, "dial"))

	e := NewExecutor(zap.NewNop(), agg)
	result, err := e.Swap(context.Background(), intent, account, 100)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(err, domain.ErrSwapThrown))
	agg.AssertNumberOfCalls(t, "Swap", 1)
}

func TestSwapRequiresAccount(t *testing.T) {
	agg := &mocks.Aggregator{}
	e := NewExecutor(zap.NewNop(), agg)

	_, err := e.Swap(context.Background(), intent, " ", 100)
	assert.True(t, errors.Is(err, domain.ErrInvalidIntent))
	agg.AssertNotCalled(t, "Swap", mock.Anything, mock.Anything)
}

func TestSlippagePercent(t *testing.T) {
	assert.Equal(t, "0.5", SlippagePercent(50))
	assert.Equal(t, "1", SlippagePercent(100))
	assert.Equal(t, "0.05", SlippagePercent(5))
}
