package trade

import (
	"strings"
	"time"

	"github.com/vadiminshakov/dexboard/internal/domain"
)

// Selection user choice of token pair and human amount.
type Selection struct {
	FromToken string `json:"fromToken"`
	ToToken   string `json:"toToken"`
	Amount    string `json:"amount"`
}

// Complete reports whether both tokens and an amount are chosen.
func (s Selection) Complete() bool {
	return strings.TrimSpace(s.FromToken) != "" &&
		strings.TrimSpace(s.ToToken) != "" &&
		strings.TrimSpace(s.Amount) != ""
}

// Snapshot immutable view of the pipeline.
type Snapshot struct {
	Stage       Stage                 `json:"stage"`
	Session     domain.Session        `json:"session"`
	Selection   Selection             `json:"selection"`
	Intent      *domain.TradeIntent   `json:"intent,omitempty"`
	Quote       *domain.Quote         `json:"quote,omitempty"`
	Allowance   domain.AllowanceState `json:"allowance"`
	Result      *domain.SwapResult    `json:"result,omitempty"`
	Message     string                `json:"message,omitempty"`
	Error       string                `json:"error,omitempty"`
	Generation  uint64                `json:"generation"`
	SwapEnabled bool                  `json:"swapEnabled"`
	AttemptID   string                `json:"attemptId,omitempty"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// Outcome returns the message shown after a swap attempt, empty before any.
func (s Snapshot) Outcome() string {
	switch s.Stage {
	case StageSwapSucceeded:
		return domain.SwapCompleteMessage
	case StageSwapFailed:
		return s.Error
	}
	return ""
}
