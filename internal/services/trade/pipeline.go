// Package trade drives a single trade through quote, allowance, approval and swap.
package trade

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"go.uber.org/zap"
)

type tokenCatalog interface {
	ListTokens(ctx context.Context, chain string) ([]domain.Token, error)
	Find(address string) (domain.Token, bool)
	Clear()
}

type quoteEngine interface {
	GetQuote(ctx context.Context, intent domain.TradeIntent) (domain.Quote, error)
	Invalidate()
}

type allowanceGate interface {
	CheckAllowance(ctx context.Context, chain, token, amountRaw, account string) (domain.AllowanceState, error)
	Approve(ctx context.Context, chain, token, account string) (domain.ApprovalReceipt, error)
	State(chain, token, account string) domain.AllowanceState
	Invalidate()
}

type swapExecutor interface {
	Swap(ctx context.Context, intent domain.TradeIntent, account string, slippageBps int) (domain.SwapResult, error)
}

type publisher interface {
	Publish(Snapshot)
}

// step is remote work derived from a state change. It runs without holding the pipeline lock.
type step func(ctx context.Context) error

func noop(context.Context) error { return nil }

// Pipeline is the per-trade state machine. Every selection or session change bumps the
// generation; results of older generations are dropped.
type Pipeline struct {
	l           *zap.Logger
	catalog     tokenCatalog
	quotes      quoteEngine
	gate        allowanceGate
	executor    swapExecutor
	pub         publisher
	slippageBps int

	mu        sync.Mutex
	gen       uint64
	stage     Stage
	session   domain.Session
	selection Selection
	intent    *domain.TradeIntent
	quote     *domain.Quote
	allowance domain.AllowanceState
	result    *domain.SwapResult
	message   string
	errMsg    string
	attemptID string
	swapping  bool
}

// NewPipeline wires the stages together. pub may be nil.
func NewPipeline(l *zap.Logger, catalog tokenCatalog, quotes quoteEngine, gate allowanceGate,
	executor swapExecutor, pub publisher, slippageBps int) *Pipeline {

	return &Pipeline{
		l:           l,
		catalog:     catalog,
		quotes:      quotes,
		gate:        gate,
		executor:    executor,
		pub:         pub,
		slippageBps: slippageBps,
		stage:       StageIdle,
	}
}

// SetSession applies a new session. A chain change reloads the token list and clears the
// selection; an account change rechecks the allowance of the current quote.
func (p *Pipeline) SetSession(ctx context.Context, session domain.Session) error {
	return p.applySession(session)(ctx)
}

// Select applies a new token selection and derives quote and allowance for it.
func (p *Pipeline) Select(ctx context.Context, selection Selection) error {
	next, err := p.applySelection(selection)
	if err != nil {
		return err
	}
	return next(ctx)
}

// Run consumes session and selection changes until ctx is done or both channels are closed.
// Changes are applied in arrival order; their remote work runs concurrently.
func (p *Pipeline) Run(ctx context.Context, sessions <-chan domain.Session, selections <-chan Selection) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	spawn := func(next step) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := next(ctx); err != nil && !errors.Is(err, domain.ErrStaleResponse) {
				p.l.Warn("trade stage failed", zap.Error(err))
			}
		}()
	}

	for sessions != nil || selections != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-sessions:
			if !ok {
				sessions = nil
				continue
			}
			spawn(p.applySession(s))
		case sel, ok := <-selections:
			if !ok {
				selections = nil
				continue
			}
			next, err := p.applySelection(sel)
			if err != nil {
				p.l.Warn("invalid selection", zap.Error(err))
				continue
			}
			spawn(next)
		}
	}

	return nil
}

func (p *Pipeline) applySession(session domain.Session) step {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.session
	p.session = session

	switch {
	case prev.ChainChanged(session):
		gen := p.bumpLocked()
		p.selection = Selection{}
		p.resetTradeLocked()
		p.quotes.Invalidate()
		p.catalog.Clear()
		p.l.Info("chain changed", zap.String("chain", session.ChainID), zap.Uint64("generation", gen))
		p.publishLocked()

		if session.ChainID == "" {
			return noop
		}
		return func(ctx context.Context) error {
			return p.loadTokens(ctx, gen, session.ChainID)
		}

	case prev.AccountChanged(session), prev.AuthChanged(session):
		gen := p.bumpLocked()
		p.allowance = domain.AllowanceUnknown
		p.result = nil
		p.message, p.errMsg = "", ""
		p.gate.Invalidate()
		p.l.Info("wallet changed",
			zap.String("account", session.Account),
			zap.Bool("authenticated", session.IsAuthenticated),
			zap.Uint64("generation", gen))

		if p.intent == nil {
			p.publishLocked()
			return noop
		}
		intent := *p.intent
		if p.quote == nil {
			p.stage = StageQuotePending
			p.publishLocked()
			return func(ctx context.Context) error {
				return p.derive(ctx, gen, intent)
			}
		}
		p.stage = StageQuoteReady
		p.publishLocked()
		return func(ctx context.Context) error {
			return p.checkAllowance(ctx, gen)
		}
	}

	p.publishLocked()
	return noop
}

func (p *Pipeline) applySelection(selection Selection) (step, error) {
	// built outside the lock
	var (
		intent   domain.TradeIntent
		buildErr error
	)
	chain := p.Session().ChainID
	if selection.Complete() {
		intent, buildErr = p.buildIntent(chain, selection)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	gen := p.bumpLocked()
	p.selection = selection
	p.resetTradeLocked()

	if !selection.Complete() {
		p.quotes.Invalidate()
		p.publishLocked()
		return noop, nil
	}

	if buildErr == nil && p.session.ChainID != chain {
		buildErr = errors.Wrap(domain.ErrInvalidIntent, "chain changed while the selection was applied")
	}
	if buildErr != nil {
		p.failLocked(buildErr)
		return nil, buildErr
	}

	p.intent = &intent
	p.stage = StageQuotePending
	p.publishLocked()

	return func(ctx context.Context) error {
		return p.derive(ctx, gen, intent)
	}, nil
}

func (p *Pipeline) buildIntent(chain string, selection Selection) (domain.TradeIntent, error) {
	from, okFrom := p.catalog.Find(selection.FromToken)
	to, okTo := p.catalog.Find(selection.ToToken)
	if !okFrom || !okTo {
		return domain.TradeIntent{}, errors.Wrap(domain.ErrInvalidIntent, "token is not in the token list")
	}
	return domain.NewTradeIntent(chain, from, to, selection.Amount)
}

func (p *Pipeline) loadTokens(ctx context.Context, gen uint64, chain string) error {
	_, err := p.catalog.ListTokens(ctx, chain)
	if err == nil || errors.Is(err, domain.ErrStaleResponse) {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen == gen {
		p.errMsg = err.Error()
		p.publishLocked()
	}
	return err
}

// derive fetches the quote of intent and then checks the allowance.
func (p *Pipeline) derive(ctx context.Context, gen uint64, intent domain.TradeIntent) error {
	q, err := p.quotes.GetQuote(ctx, intent)

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		p.l.Debug("discarding quote of outdated trade", zap.Uint64("generation", gen))
		return errors.Wrap(domain.ErrStaleResponse, "quote")
	}
	if err != nil {
		p.stage = StageIdle
		p.quote = nil
		p.errMsg = err.Error()
		p.publishLocked()
		p.mu.Unlock()
		return err
	}
	p.quote = &q
	p.stage = StageQuoteReady
	p.publishLocked()
	p.mu.Unlock()

	return p.checkAllowance(ctx, gen)
}

func (p *Pipeline) checkAllowance(ctx context.Context, gen uint64) error {
	p.mu.Lock()
	if p.gen != gen || p.intent == nil {
		p.mu.Unlock()
		return errors.Wrap(domain.ErrStaleResponse, "allowance")
	}
	intent := *p.intent
	account := p.session.Account

	if intent.FromNative() {
		p.allowance = domain.AllowanceSufficient
		p.stage = StageAllowanceSufficient
		p.publishLocked()
		p.mu.Unlock()
		return nil
	}
	if !p.session.CanTrade() {
		p.allowance = domain.AllowanceUnknown
		p.stage = StageQuoteReady
		p.publishLocked()
		p.mu.Unlock()
		return nil
	}
	p.stage = StageAllowanceCheckPending
	p.publishLocked()
	p.mu.Unlock()

	state, err := p.gate.CheckAllowance(ctx, intent.Chain, intent.FromTokenAddress, intent.AmountRaw, account)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		p.l.Debug("discarding allowance of outdated trade", zap.Uint64("generation", gen))
		return errors.Wrap(domain.ErrStaleResponse, "allowance")
	}
	if err != nil {
		p.allowance = domain.AllowanceUnknown
		p.stage = StageQuoteReady
		p.errMsg = err.Error()
		p.publishLocked()
		return err
	}

	p.allowance = state
	p.stage = stageOf(state)
	p.publishLocked()
	return nil
}

// Swap submits the current trade, requesting an approval first when the allowance is insufficient.
// It is rejected with ErrNotReady while a stage is pending or without a valid quote.
func (p *Pipeline) Swap(ctx context.Context) (domain.SwapResult, error) {
	p.mu.Lock()
	if err := p.swappableLocked(); err != nil {
		p.mu.Unlock()
		return domain.SwapResult{}, err
	}
	gen := p.gen
	intent := *p.intent
	account := p.session.Account
	attemptID := uuid.NewString()
	p.swapping = true
	p.attemptID = attemptID
	p.errMsg, p.message = "", ""
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.swapping = false
		if p.gen == gen {
			p.publishLocked()
		}
		p.mu.Unlock()
	}()

	l := p.l.With(zap.String("attempt", attemptID), zap.Stringer("intent", intent))

	if err := p.ensureAllowance(ctx, l, gen, intent, account); err != nil {
		return domain.SwapResult{}, err
	}

	if !p.transition(gen, func() { p.stage = StageSwapPending; p.result = nil }) {
		return domain.SwapResult{}, errors.Wrap(domain.ErrStaleResponse, "swap")
	}
	l.Info("submitting swap")

	result, err := p.executor.Swap(ctx, intent, account, p.slippageBps)

	applied := p.transition(gen, func() {
		p.result = &result
		if err != nil {
			p.stage = StageSwapFailed
			p.errMsg = err.Error()
			return
		}
		p.stage = StageSwapSucceeded
		p.message = domain.SwapCompleteMessage
	})
	if !applied {
		l.Warn("swap finished for an outdated trade", zap.Bool("success", result.Success))
	}
	if err != nil {
		l.Error("swap failed", zap.Error(err))
		return result, err
	}

	l.Info("swap complete", zap.String("tx", result.TxHash))
	return result, nil
}

// ensureAllowance rechecks an unknown allowance and requests approval when it is insufficient.
func (p *Pipeline) ensureAllowance(ctx context.Context, l *zap.Logger, gen uint64, intent domain.TradeIntent, account string) error {
	if intent.FromNative() {
		return nil
	}

	state := p.gate.State(intent.Chain, intent.FromTokenAddress, account)
	if state == domain.AllowanceUnknown {
		var err error
		state, err = p.gate.CheckAllowance(ctx, intent.Chain, intent.FromTokenAddress, intent.AmountRaw, account)
		if err != nil {
			p.transition(gen, func() { p.errMsg = err.Error() })
			return err
		}
		p.transition(gen, func() { p.allowance = state })
	}
	if state == domain.AllowanceSufficient {
		return nil
	}

	if !p.transition(gen, func() { p.stage = StageApprovalPending }) {
		return errors.Wrap(domain.ErrStaleResponse, "approval")
	}
	l.Info("requesting approval", zap.String("token", intent.FromTokenAddress))

	receipt, err := p.gate.Approve(ctx, intent.Chain, intent.FromTokenAddress, account)
	if err != nil {
		p.transition(gen, func() {
			p.allowance = domain.AllowanceInsufficient
			p.stage = StageAllowanceInsufficient
			p.errMsg = err.Error()
		})
		l.Error("approval failed", zap.Error(err))
		return err
	}

	l.Info("approval granted", zap.String("tx", receipt.TransactionHash))
	if !p.transition(gen, func() {
		p.allowance = domain.AllowanceSufficient
		p.stage = StageAllowanceSufficient
	}) {
		return errors.Wrap(domain.ErrStaleResponse, "approval")
	}
	return nil
}

// Snapshot returns the current view of the pipeline.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Session returns the applied session.
func (p *Pipeline) Session() domain.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

func (p *Pipeline) swappableLocked() error {
	switch {
	case p.swapping:
		return errors.Wrap(domain.ErrNotReady, "swap already in progress")
	case !p.stage.Swappable():
		return errors.Wrapf(domain.ErrNotReady, "stage %s", p.stage)
	case p.intent == nil || p.quote == nil || !p.quote.Matches(*p.intent):
		return errors.Wrap(domain.ErrNotReady, "no valid quote")
	case !p.session.CanTrade():
		return errors.Wrap(domain.ErrNotReady, "wallet is not connected")
	}
	return nil
}

// transition applies fn and publishes when gen is still current.
func (p *Pipeline) transition(gen uint64, fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return false
	}
	fn()
	p.publishLocked()
	return true
}

func (p *Pipeline) bumpLocked() uint64 {
	p.gen++
	return p.gen
}

func (p *Pipeline) resetTradeLocked() {
	p.stage = StageIdle
	p.intent = nil
	p.quote = nil
	p.allowance = domain.AllowanceUnknown
	p.result = nil
	p.message, p.errMsg = "", ""
	p.attemptID = ""
}

func (p *Pipeline) failLocked(err error) {
	p.stage = StageIdle
	p.errMsg = err.Error()
	p.publishLocked()
}

func (p *Pipeline) publishLocked() {
	if p.pub == nil {
		return
	}
	p.pub.Publish(p.snapshotLocked())
}

func (p *Pipeline) snapshotLocked() Snapshot {
	s := Snapshot{
		Stage:      p.stage,
		Session:    p.session,
		Selection:  p.selection,
		Allowance:  p.allowance,
		Message:    p.message,
		Error:      p.errMsg,
		Generation: p.gen,
		AttemptID:  p.attemptID,
		UpdatedAt:  time.Now().UTC(),
	}
	if p.intent != nil {
		intent := *p.intent
		s.Intent = &intent
	}
	if p.quote != nil {
		q := *p.quote
		s.Quote = &q
	}
	if p.result != nil {
		r := *p.result
		s.Result = &r
	}
	s.SwapEnabled = p.swappableLocked() == nil
	return s
}

func stageOf(state domain.AllowanceState) Stage {
	switch state {
	case domain.AllowanceSufficient:
		return StageAllowanceSufficient
	case domain.AllowanceInsufficient:
		return StageAllowanceInsufficient
	}
	return StageQuoteReady
}
