// Package testutil holds fixtures shared by package tests and the
// conformance harness.
package testutil

import "sync"

// Sequence hands out step numbers 1, 2, 3, ... so harness traces are
// reproducible. It is safe for concurrent use.
type Sequence struct {
	mu sync.Mutex
	n  int64
}

// NewSequence returns a sequence whose first Next is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next advances the sequence and returns the new value.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

// Current returns the last value handed out, or 0.
func (s *Sequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}
