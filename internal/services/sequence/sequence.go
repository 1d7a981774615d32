// Package sequence issues monotonic request tickets so late responses can be told apart from current ones.
package sequence

import "sync/atomic"

// Ticket identifies one issued request.
type Ticket uint64

// Sequencer hands out tickets. The zero value is ready to use.
type Sequencer struct {
	last atomic.Uint64
}

// Next issues a ticket that supersedes every ticket issued before.
func (s *Sequencer) Next() Ticket {
	return Ticket(s.last.Add(1))
}

// IsLatest reports whether t is still the most recently issued ticket.
func (s *Sequencer) IsLatest(t Ticket) bool {
	return s.last.Load() == uint64(t)
}
