package domain

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// Session wallet context supplied by the caller. Values are never mutated; the With methods return copies.
type Session struct {
	Account         string `json:"account"`
	ChainID         string `json:"chainId"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// NewSession normalizes account and chain id.
func NewSession(account, chainID string, authenticated bool) Session {
	return Session{
		Account:         strings.ToLower(strings.TrimSpace(account)),
		ChainID:         strings.ToLower(strings.TrimSpace(chainID)),
		IsAuthenticated: authenticated,
	}
}

// WithAuthenticated returns a copy with the authentication flag changed.
func (s Session) WithAuthenticated(authenticated bool) Session {
	return NewSession(s.Account, s.ChainID, authenticated)
}

// ChainChanged reports whether o points to another chain.
func (s Session) ChainChanged(o Session) bool {
	return !strings.EqualFold(s.ChainID, o.ChainID)
}

// AccountChanged reports whether o belongs to another account.
func (s Session) AccountChanged(o Session) bool {
	return !SameAddress(s.Account, o.Account)
}

// Validate checks that the account, when set, is a hex address and the chain id, when set, decodes.
func (s Session) Validate() error {
	if s.Account != "" {
		if _, ok := NormalizeAddress(s.Account); !ok {
			return errors.Wrapf(ErrInvalidSession, "account %q is not an address", s.Account)
		}
	}
	if s.ChainID != "" {
		if _, err := ChainNumber(s.ChainID); err != nil {
			return errors.Wrapf(ErrInvalidSession, "%v", err)
		}
	}
	return nil
}

// AuthChanged reports whether o connects or disconnects the wallet.
func (s Session) AuthChanged(o Session) bool {
	return s.IsAuthenticated != o.IsAuthenticated
}

// CanTrade reports whether the session has a connected wallet account.
func (s Session) CanTrade() bool {
	return s.IsAuthenticated && s.Account != ""
}

// ChainNumber decodes a chain id given as hex ("0x1") or decimal ("1").
func ChainNumber(chain string) (uint64, error) {
	chain = strings.TrimSpace(chain)
	if strings.HasPrefix(chain, "0x") || strings.HasPrefix(chain, "0X") {
		n, err := hexutil.DecodeUint64(strings.ToLower(chain))
		if err != nil {
			return 0, errors.Wrapf(err, "decode chain id %q", chain)
		}
		return n, nil
	}

	n, err := strconv.ParseUint(chain, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "decode chain id %q", chain)
	}
	return n, nil
}
