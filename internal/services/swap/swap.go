// Package swap submits a single swap attempt to the aggregator.
package swap

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"go.uber.org/zap"
)

type swapper interface {
	Swap(ctx context.Context, req domain.SwapRequest) (domain.SwapResponse, error)
}

// Executor submits swaps. It never retries.
type Executor struct {
	l      *zap.Logger
	source swapper
}

// NewExecutor creates a swap executor.
func NewExecutor(l *zap.Logger, source swapper) *Executor {
	return &Executor{l: l, source: source}
}

// Swap submits intent on behalf of account. slippageBps is converted to a percentage.
// A failed call returns ErrSwapThrown; an answer with a failure status returns the result
// together with ErrSwapRejected.
func (e *Executor) Swap(ctx context.Context, intent domain.TradeIntent, account string, slippageBps int) (domain.SwapResult, error) {
	if err := intent.Validate(); err != nil {
		return domain.SwapResult{}, err
	}
	if strings.TrimSpace(account) == "" {
		return domain.SwapResult{}, errors.Wrap(domain.ErrInvalidIntent, "account is empty")
	}

	req := domain.SwapRequest{
		Chain:            intent.Chain,
		FromTokenAddress: intent.FromTokenAddress,
		ToTokenAddress:   intent.ToTokenAddress,
		Amount:           intent.AmountRaw,
		FromAddress:      strings.ToLower(account),
		Slippage:         SlippagePercent(slippageBps),
	}

	resp, err := e.source.Swap(ctx, req)
	if err != nil {
		e.l.Error("swap submission failed", zap.Stringer("intent", intent), zap.Error(err))
		return domain.SwapResult{}, errors.Wrapf(domain.ErrSwapThrown, "%v", err)
	}

	result := domain.SwapResult{
		Success:    domain.SwapSucceeded(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Raw:        resp.Raw,
		TxHash:     resp.TxHash,
	}

	if !result.Success {
		msg := resp.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		e.l.Error("swap rejected",
			zap.Stringer("intent", intent),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return result, errors.Wrap(domain.ErrSwapRejected, msg)
	}

	e.l.Info("swap submitted", zap.Stringer("intent", intent), zap.String("tx", resp.TxHash))

	return result, nil
}

// SlippagePercent renders basis points as a percentage, e.g. 50 -> "0.5".
func SlippagePercent(bps int) string {
	return decimal.New(int64(bps), -2).String()
}
