package sched

import "sync/atomic"

// Wake is a one-bit wake token shared between interrupt and task context.
// The zero value is an unwoken token.
type Wake struct {
	woken atomic.Uint32
}

// Set marks the token woken. Safe from interrupt context.
func (w *Wake) Set() {
	w.woken.Store(1)
}

// Check reports whether the token was woken and clears it.
func (w *Wake) Check() bool {
	return w.woken.Swap(0) != 0
}

// Pending reports whether the token is woken without clearing it.
func (w *Wake) Pending() bool {
	return w.woken.Load() != 0
}
