// Turn interruption.
//
// Information Hiding:
// - Signal delivery (closed channel) hidden behind methods
//
// Every turn carries one Interrupt. Pipeline stages check it at each
// suspension point; triggering it makes the turn unwind without committing
// anything. Triggering is idempotent and never blocks.

package assistant

import (
	"errors"
	"sync"
)

// ErrInterrupted is returned by pipeline stages when the turn's interrupt
// has been triggered.
var ErrInterrupted = errors.New("assistant: turn interrupted")

// Interrupt is a one-shot, level-triggered cancellation signal for a turn.
type Interrupt struct {
	once sync.Once
	ch   chan struct{}
}

// NewInterrupt creates an untriggered interrupt.
func NewInterrupt() *Interrupt {
	return &Interrupt{ch: make(chan struct{})}
}

// Trigger fires the interrupt. Safe to call repeatedly and concurrently.
func (i *Interrupt) Trigger() {
	i.once.Do(func() { close(i.ch) })
}

// Done returns a channel closed once the interrupt fires.
func (i *Interrupt) Done() <-chan struct{} {
	return i.ch
}

// Triggered reports whether the interrupt has fired.
func (i *Interrupt) Triggered() bool {
	select {
	case <-i.ch:
		return true
	default:
		return false
	}
}

// Check returns ErrInterrupted if the interrupt has fired.
// Pipeline stages call this at every suspension point.
func (i *Interrupt) Check() error {
	if i.Triggered() {
		return ErrInterrupted
	}
	return nil
}
