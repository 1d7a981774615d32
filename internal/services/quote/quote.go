// Package quote prices trade intents through the aggregator and keeps only the latest answer.
package quote

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/services/sequence"
	"go.uber.org/zap"
)

type quoter interface {
	Quote(ctx context.Context, intent domain.TradeIntent) (domain.Quote, error)
}

// Engine derives a Quote from the most recently issued TradeIntent.
type Engine struct {
	l      *zap.Logger
	source quoter
	seq    sequence.Sequencer

	mu     sync.RWMutex
	intent domain.TradeIntent
	quote  *domain.Quote
}

// NewEngine creates a quote engine.
func NewEngine(l *zap.Logger, source quoter) *Engine {
	return &Engine{l: l, source: source}
}

// GetQuote requests a quote for intent. The previous quote is dropped as soon as the request is issued.
// Only the answer to the latest intent is applied; answers to superseded intents return ErrStaleResponse.
func (e *Engine) GetQuote(ctx context.Context, intent domain.TradeIntent) (domain.Quote, error) {
	e.mu.Lock()
	ticket := e.seq.Next()
	e.intent = intent
	e.quote = nil
	e.mu.Unlock()

	if err := intent.Validate(); err != nil {
		return domain.Quote{}, err
	}

	q, err := e.source.Quote(ctx, intent)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.seq.IsLatest(ticket) {
		e.l.Debug("discarding stale quote", zap.Stringer("intent", intent))
		return domain.Quote{}, errors.Wrapf(domain.ErrStaleResponse, "quote for %s", intent)
	}
	if err != nil {
		e.l.Error("failed to get quote", zap.Stringer("intent", intent), zap.Error(err))
		return domain.Quote{}, errors.Wrapf(domain.ErrQuote, "%v", err)
	}
	if !q.Matches(intent) {
		e.l.Error("quote does not match intent",
			zap.Stringer("intent", intent),
			zap.String("from", q.FromToken.Address),
			zap.String("to", q.ToToken.Address))
		return domain.Quote{}, errors.Wrap(domain.ErrQuote, "quote tokens do not match the request")
	}

	e.quote = &q
	e.l.Info("quote received",
		zap.Stringer("intent", intent),
		zap.String("toTokenAmount", q.ToTokenAmount),
		zap.Uint64("estimatedGas", q.EstimatedGas))

	return q, nil
}

// current returns the latest intent and its quote, if one arrived.
func (e *Engine) current() (domain.TradeIntent, domain.Quote, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.quote == nil {
		return e.intent, domain.Quote{}, false
	}
	return e.intent, *e.quote, true
}

// Invalidate drops the current quote and supersedes in-flight requests.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq.Next()
	e.intent = domain.TradeIntent{}
	e.quote = nil
}
