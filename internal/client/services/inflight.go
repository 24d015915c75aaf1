package services

import (
	"errors"
	"sync/atomic"
)

// ErrSubmissionPending is returned when a form is submitted again while the
// previous submission has not settled. The second submission is dropped.
var ErrSubmissionPending = errors.New("submission already in progress")

// Guard allows one in-flight submission per form.
type Guard struct {
	busy atomic.Bool
}

// Do runs fn unless another Do on the same guard is still running.
func (g *Guard) Do(fn func() error) error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrSubmissionPending
	}
	defer g.busy.Store(false)
	return fn()
}

func (g *Guard) Pending() bool {
	return g.busy.Load()
}
