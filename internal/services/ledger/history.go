package ledger

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/services/sequence"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type transferFeed interface {
	ERC20Transfers(ctx context.Context, chain, address string) ([]domain.ERC20Transfer, error)
	NFTTransfers(ctx context.Context, chain, address string) ([]domain.NFTTransfer, error)
}

// History keeps the latest result of each feed and materializes the merged ledger once both arrived.
// The ledger belongs to the session it was loaded for.
type History struct {
	l    *zap.Logger
	feed transferFeed
	seq  sequence.Sequencer

	mu      sync.RWMutex
	session domain.Session
	erc20   []domain.ERC20Transfer
	nfts    []domain.NFTTransfer
	hasERC  bool
	hasNFT  bool
	merged  []domain.GenericTransfer
}

// NewHistory creates a history loader.
func NewHistory(l *zap.Logger, feed transferFeed) *History {
	return &History{l: l, feed: feed}
}

// Transfers returns the merged ledger of session. loaded is false until both feeds of that
// session returned at least once.
func (h *History) Transfers(session domain.Session) ([]domain.GenericTransfer, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.merged == nil || h.session != session {
		return nil, false
	}
	out := make([]domain.GenericTransfer, len(h.merged))
	copy(out, h.merged)
	return out, true
}

// Reset forgets both feeds and supersedes in-flight loads.
func (h *History) Reset() {
	h.begin(domain.Session{})
}

// Load fetches both feeds of the session account concurrently and joins them. Each feed is
// recorded as it arrives. Results of a load superseded by a later Load or Reset return ErrStaleResponse.
func (h *History) Load(ctx context.Context, session domain.Session) ([]domain.GenericTransfer, error) {
	if !session.CanTrade() {
		return nil, domain.ErrNotAuthenticated
	}

	ticket := h.begin(session)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := h.feed.ERC20Transfers(gctx, session.ChainID, session.Account)
		if err != nil {
			return errors.Wrap(err, "load erc20 transfers")
		}
		return h.setERC20(ticket, records)
	})
	g.Go(func() error {
		records, err := h.feed.NFTTransfers(gctx, session.ChainID, session.Account)
		if err != nil {
			return errors.Wrap(err, "load nft transfers")
		}
		return h.setNFT(ticket, records)
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, domain.ErrStaleResponse) {
			h.l.Debug("discarding stale transfer history", zap.String("account", session.Account))
			return nil, err
		}
		h.l.Error("failed to load transfer history", zap.String("account", session.Account), zap.Error(err))
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.seq.IsLatest(ticket) {
		h.l.Debug("discarding stale transfer history", zap.String("account", session.Account))
		return nil, errors.Wrapf(domain.ErrStaleResponse, "history of %s", session.Account)
	}

	h.l.Info("transfer history loaded",
		zap.String("account", session.Account),
		zap.Int("erc20", len(h.erc20)),
		zap.Int("nft", len(h.nfts)))

	out := make([]domain.GenericTransfer, len(h.merged))
	copy(out, h.merged)
	return out, nil
}

// begin clears both feeds, binds them to session and supersedes every earlier load.
func (h *History) begin(session domain.Session) sequence.Ticket {
	h.mu.Lock()
	defer h.mu.Unlock()

	ticket := h.seq.Next()
	h.session = session
	h.erc20, h.nfts = nil, nil
	h.hasERC, h.hasNFT = false, false
	h.merged = nil
	return ticket
}

func (h *History) setERC20(ticket sequence.Ticket, records []domain.ERC20Transfer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.seq.IsLatest(ticket) {
		return errors.Wrap(domain.ErrStaleResponse, "erc20 transfers")
	}
	h.erc20 = records
	h.hasERC = true
	h.rebuildLocked()
	return nil
}

func (h *History) setNFT(ticket sequence.Ticket, records []domain.NFTTransfer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.seq.IsLatest(ticket) {
		return errors.Wrap(domain.ErrStaleResponse, "nft transfers")
	}
	h.nfts = records
	h.hasNFT = true
	h.rebuildLocked()
	return nil
}

func (h *History) rebuildLocked() {
	if !h.hasERC || !h.hasNFT {
		h.merged = nil
		return
	}
	h.merged = Merge(h.erc20, h.nfts)
}
