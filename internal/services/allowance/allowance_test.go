package allowance

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/dexboard/internal/clients"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/mocks"
	"go.uber.org/zap"
)

const (
	usdc    = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	account = "0x00000000000000000000000000000000000000aa"
)

func TestNativeIsSufficientWithoutCall(t *testing.T) {
	agg := &mocks.Aggregator{}
	g := NewGate(zap.NewNop(), agg)

	state, err := g.CheckAllowance(context.Background(), "0x1", domain.NativeAddress, "1000", account)
	require.NoError(t, err)
	assert.Equal(t, domain.AllowanceSufficient, state)
	assert.Equal(t, domain.AllowanceSufficient, g.State("0x1", domain.NativeAddress, account))
	agg.AssertNotCalled(t, "HasAllowance", mock.Anything, mock.Anything)
}

func TestCheckAllowance(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name     string
		resp     domain.Allowance
		expected domain.AllowanceState
	}{
		{name: "approved flag", resp: domain.Allowance{Approved: &yes}, expected: domain.AllowanceSufficient},
		{name: "not approved flag", resp: domain.Allowance{Approved: &no}, expected: domain.AllowanceInsufficient},
		{name: "amount equal", resp: domain.Allowance{Amount: "1000"}, expected: domain.AllowanceSufficient},
		{name: "amount greater", resp: domain.Allowance{Amount: "115792089237316195423570985008687907853269984665640564039457584007913129639935"}, expected: domain.AllowanceSufficient},
		{name: "amount lower", resp: domain.Allowance{Amount: "999"}, expected: domain.AllowanceInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := &mocks.Aggregator{}
			agg.On("HasAllowance", mock.Anything, domain.AllowanceRequest{
				Chain: "0x1", TokenAddress: usdc, Account: account, Amount: "1000",
			}).Return(tt.resp, nil)

			g := NewGate(zap.NewNop(), agg)
			state, err := g.CheckAllowance(context.Background(), "0x1", usdc, "1000", account)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, state)
			assert.Equal(t, tt.expected, g.State("0x1", usdc, account))
		})
	}
}

func TestStateIsScoped(t *testing.T) {
	yes := true
	agg := &mocks.Aggregator{}
	agg.On("HasAllowance", mock.Anything, mock.Anything).Return(domain.Allowance{Approved: &yes}, nil)

	g := NewGate(zap.NewNop(), agg)
	_, err := g.CheckAllowance(context.Background(), "0x1", usdc, "1", account)
	require.NoError(t, err)

	assert.Equal(t, domain.AllowanceSufficient, g.State("0x1", usdc, account))
	assert.Equal(t, domain.AllowanceUnknown, g.State("0x89", usdc, account))
	assert.Equal(t, domain.AllowanceUnknown, g.State("0x1", usdc, "0x00000000000000000000000000000000000000bb"))

	g.Invalidate()
	assert.Equal(t, domain.AllowanceUnknown, g.State("0x1", usdc, account))
}

func TestCheckAllowanceError(t *testing.T) {
	agg := &mocks.Aggregator{}
	agg.On("HasAllowance", mock.Anything, mock.Anything).Return(domain.Allowance{}, errors.Wrap(domain.ErrServiceUnavailable, "dial"))

	g := NewGate(zap.NewNop(), agg)
	state, err := g.CheckAllowance(context.Background(), "0x1", usdc, "1", account)
	assert.Equal(t, domain.AllowanceUnknown, state)
	assert.True(t, errors.Is(err, domain.ErrServiceUnavailable))
}

func TestApprove(t *testing.T) {
	agg := &mocks.Aggregator{}
	agg.On("Approve", mock.Anything, domain.ApproveRequest{Chain: "0x1", TokenAddress: usdc, Account: account}).
		Return(domain.ApprovalReceipt{TransactionHash: "0xfeed"}, nil)

	g := NewGate(zap.NewNop(), agg)
	receipt, err := g.Approve(context.Background(), "0x1", usdc, account)
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", receipt.TransactionHash)
	assert.Equal(t, domain.AllowanceSufficient, g.State("0x1", usdc, account))
}

func TestApproveErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "rejected", err: &clients.APIError{StatusCode: http.StatusBadRequest, Message: "user denied"}, expected: domain.ErrApprovalRejected},
		{name: "server error", err: &clients.APIError{StatusCode: http.StatusBadGateway, Message: "upstream"}, expected: domain.ErrApprovalService},
		{name: "transport", err: errors.Wrap(domain.ErrServiceUnavailable, "dial"), expected: domain.ErrApprovalService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := &mocks.Aggregator{}
			agg.On("Approve", mock.Anything, mock.Anything).Return(domain.ApprovalReceipt{}, tt.err)

			g := NewGate(zap.NewNop(), agg)
			_, err := g.Approve(context.Background(), "0x1", usdc, account)
			assert.True(t, errors.Is(err, tt.expected))
			assert.Equal(t, domain.AllowanceUnknown, g.State("0x1", usdc, account))
		})
	}
}

func TestApproveRejectedSurfacesMessage(t *testing.T) {
	agg := &mocks.Aggregator{}
	agg.On("Approve", mock.Anything, mock.Anything).Return(domain.ApprovalReceipt{}, &clients.APIError{StatusCode: http.StatusForbidden, Message: "user denied"})

	g := NewGate(zap.NewNop(), agg)
	_, err := g.Approve(context.Background(), "0x1", usdc, account)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user denied")
}
