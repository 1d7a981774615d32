// Package allowance checks and requests spending approvals of the aggregator.
package allowance

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/dexboard/internal/clients"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"go.uber.org/zap"
)

type approver interface {
	HasAllowance(ctx context.Context, req domain.AllowanceRequest) (domain.Allowance, error)
	Approve(ctx context.Context, req domain.ApproveRequest) (domain.ApprovalReceipt, error)
}

// Scope identifies a cached allowance.
type Scope struct {
	Chain   string
	Token   string
	Account string
}

func newScope(chain, token, account string) Scope {
	return Scope{
		Chain:   strings.ToLower(strings.TrimSpace(chain)),
		Token:   strings.ToLower(strings.TrimSpace(token)),
		Account: strings.ToLower(strings.TrimSpace(account)),
	}
}

// Gate answers whether a token may be spent and requests approvals.
type Gate struct {
	l      *zap.Logger
	source approver

	mu     sync.RWMutex
	states map[Scope]domain.AllowanceState
}

// NewGate creates an allowance gate.
func NewGate(l *zap.Logger, source approver) *Gate {
	return &Gate{
		l:      l,
		source: source,
		states: make(map[Scope]domain.AllowanceState),
	}
}

// CheckAllowance asks the aggregator whether account allowed spending amountRaw of token.
// The native asset is always sufficient and never asked about.
func (g *Gate) CheckAllowance(ctx context.Context, chain, token, amountRaw, account string) (domain.AllowanceState, error) {
	if domain.IsNativeAddress(token) {
		return domain.AllowanceSufficient, nil
	}

	scope := newScope(chain, token, account)
	resp, err := g.source.HasAllowance(ctx, domain.AllowanceRequest{
		Chain:        scope.Chain,
		TokenAddress: scope.Token,
		Account:      scope.Account,
		Amount:       amountRaw,
	})
	if err != nil {
		g.l.Error("failed to check allowance", zap.String("token", scope.Token), zap.Error(err))
		return domain.AllowanceUnknown, errors.Wrap(err, "check allowance")
	}

	state, err := evaluate(resp, amountRaw)
	if err != nil {
		return domain.AllowanceUnknown, err
	}

	g.mu.Lock()
	g.states[scope] = state
	g.mu.Unlock()

	g.l.Info("allowance checked",
		zap.String("token", scope.Token),
		zap.String("account", scope.Account),
		zap.Stringer("state", state))

	return state, nil
}

// Approve requests a spending approval. 4xx answers map to ErrApprovalRejected, anything else
// that fails to ErrApprovalService. On success the scope reads as sufficient.
func (g *Gate) Approve(ctx context.Context, chain, token, account string) (domain.ApprovalReceipt, error) {
	if domain.IsNativeAddress(token) {
		return domain.ApprovalReceipt{}, nil
	}

	scope := newScope(chain, token, account)
	receipt, err := g.source.Approve(ctx, domain.ApproveRequest{
		Chain:        scope.Chain,
		TokenAddress: scope.Token,
		Account:      scope.Account,
	})
	if err != nil {
		g.l.Error("approval failed", zap.String("token", scope.Token), zap.Error(err))

		var apiErr *clients.APIError
		if clients.IsClientError(err) && errors.As(err, &apiErr) {
			return domain.ApprovalReceipt{}, errors.Wrap(domain.ErrApprovalRejected, apiErr.Message)
		}
		return domain.ApprovalReceipt{}, errors.Wrapf(domain.ErrApprovalService, "%v", err)
	}

	g.mu.Lock()
	g.states[scope] = domain.AllowanceSufficient
	g.mu.Unlock()

	g.l.Info("approval granted", zap.String("token", scope.Token), zap.String("tx", receipt.TransactionHash))

	return receipt, nil
}

// State returns the cached state of the scope. Scopes never checked read as unknown.
func (g *Gate) State(chain, token, account string) domain.AllowanceState {
	if domain.IsNativeAddress(token) {
		return domain.AllowanceSufficient
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.states[newScope(chain, token, account)]
}

// Invalidate forgets every cached state.
func (g *Gate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.states = make(map[Scope]domain.AllowanceState)
}

func evaluate(resp domain.Allowance, amountRaw string) (domain.AllowanceState, error) {
	if resp.Approved != nil {
		if *resp.Approved {
			return domain.AllowanceSufficient, nil
		}
		return domain.AllowanceInsufficient, nil
	}

	allowed, err := decimal.NewFromString(strings.TrimSpace(resp.Amount))
	if err != nil {
		return domain.AllowanceUnknown, errors.Wrapf(err, "parse allowance %q", resp.Amount)
	}
	needed, err := decimal.NewFromString(strings.TrimSpace(amountRaw))
	if err != nil {
		return domain.AllowanceUnknown, errors.Wrapf(domain.ErrInvalidAmount, "parse amount %q", amountRaw)
	}

	if allowed.GreaterThanOrEqual(needed) {
		return domain.AllowanceSufficient, nil
	}
	return domain.AllowanceInsufficient, nil
}
