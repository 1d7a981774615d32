package domain

import "github.com/pkg/errors"

var (
	// ErrServiceUnavailable remote plugin or service is not reachable.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrQuote quote request failed; the current quote is invalidated.
	ErrQuote = errors.New("quote failed")
	// ErrApprovalRejected aggregator refused the approval request.
	ErrApprovalRejected = errors.New("approval rejected")
	// ErrApprovalService approval could not be requested.
	ErrApprovalService = errors.New("approval service error")
	// ErrSwapRejected swap answered with a failure status.
	ErrSwapRejected = errors.New("swap rejected")
	// ErrSwapThrown swap submission failed before a response arrived.
	ErrSwapThrown = errors.New("swap submission failed")
	// ErrStaleResponse response belongs to a superseded request and was discarded.
	ErrStaleResponse = errors.New("stale response discarded")
	// ErrNotReady requested stage cannot run in the current trade state.
	ErrNotReady = errors.New("trade is not ready")
	// ErrInvalidAmount amount cannot be scaled into a raw integer.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidIntent trade intent misses tokens or amount.
	ErrInvalidIntent = errors.New("invalid trade intent")
	// ErrInvalidSession session carries a malformed account or chain id.
	ErrInvalidSession = errors.New("invalid session")
	// ErrNotAuthenticated wallet session is not authenticated.
	ErrNotAuthenticated = errors.New("wallet is not connected")
)
