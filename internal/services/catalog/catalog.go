// Package catalog loads the tradable token list of a chain.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/services/sequence"
	"go.uber.org/zap"
)

type tokenSource interface {
	GetSupportedTokens(ctx context.Context, chain string) ([]domain.Token, error)
}

// Catalog holds the token list of the most recently requested chain.
type Catalog struct {
	l      *zap.Logger
	source tokenSource
	seq    sequence.Sequencer

	mu     sync.RWMutex
	chain  string
	tokens []domain.Token
	index  map[string]domain.Token
}

// NewCatalog creates a catalog backed by source.
func NewCatalog(l *zap.Logger, source tokenSource) *Catalog {
	return &Catalog{
		l:      l,
		source: source,
		index:  make(map[string]domain.Token),
	}
}

// ListTokens loads and applies the token list of chain. A response that was superseded
// by a later call is not applied and ErrStaleResponse is returned.
func (c *Catalog) ListTokens(ctx context.Context, chain string) ([]domain.Token, error) {
	ticket := c.seq.Next()

	raw, err := c.source.GetSupportedTokens(ctx, chain)
	if err != nil {
		c.l.Error("failed to load token list", zap.String("chain", chain), zap.Error(err))
		if errors.Is(err, domain.ErrServiceUnavailable) {
			return nil, err
		}
		return nil, errors.Wrapf(domain.ErrServiceUnavailable, "token list of chain %s: %v", chain, err)
	}

	tokens := Normalize(raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seq.IsLatest(ticket) {
		c.l.Debug("discarding stale token list", zap.String("chain", chain))
		return nil, errors.Wrapf(domain.ErrStaleResponse, "token list of chain %s", chain)
	}

	c.chain = chain
	c.tokens = tokens
	c.index = make(map[string]domain.Token, len(tokens))
	for _, t := range tokens {
		c.index[t.Address] = t
	}

	c.l.Info("token list loaded", zap.String("chain", chain), zap.Int("tokens", len(tokens)))

	return cloneTokens(tokens), nil
}

// Tokens returns the applied list and its chain.
func (c *Catalog) Tokens() (string, []domain.Token) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chain, cloneTokens(c.tokens)
}

// Find looks up a token of the applied list by address.
func (c *Catalog) Find(address string) (domain.Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.index[strings.ToLower(strings.TrimSpace(address))]
	return t, ok
}

// Resolve finds a token of the applied list by address or, failing that, by symbol (case-insensitive).
func (c *Catalog) Resolve(ref string) (domain.Token, bool) {
	if t, ok := c.Find(ref); ok {
		return t, true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tokens {
		if strings.EqualFold(t.Symbol, strings.TrimSpace(ref)) {
			return t, true
		}
	}
	return domain.Token{}, false
}

// Clear forgets the applied list.
func (c *Catalog) Clear() {
	c.seq.Next()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.chain = ""
	c.tokens = nil
	c.index = make(map[string]domain.Token)
}

// Normalize drops entries with invalid addresses, lower-cases and deduplicates addresses and
// sorts the list with the native asset first, then by symbol.
func Normalize(raw []domain.Token) []domain.Token {
	seen := make(map[string]struct{}, len(raw))
	tokens := make([]domain.Token, 0, len(raw))

	for _, t := range raw {
		addr, ok := domain.NormalizeAddress(t.Address)
		if !ok {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		t.Address = addr
		tokens = append(tokens, t)
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].IsNative() != tokens[j].IsNative() {
			return tokens[i].IsNative()
		}
		return strings.ToUpper(tokens[i].Symbol) < strings.ToUpper(tokens[j].Symbol)
	})

	return tokens
}

func cloneTokens(tokens []domain.Token) []domain.Token {
	out := make([]domain.Token, len(tokens))
	copy(out, tokens)
	return out
}
