package undo

import "sync"

// Stack is the linear undo/redo history. A new committed batch always
// clears the redo side (single-history semantics): once the user has
// diverged, the abandoned future is unreachable.
//
// Thread-safety: all methods take the internal lock. Writers are the
// transaction orchestrator (Push) and the replayer (Shift* after a
// committed inverse transaction).
type Stack struct {
	mu   sync.RWMutex
	undo []*Batch
	redo []*Batch
}

// NewStack creates an empty history.
func NewStack() *Stack {
	return &Stack{}
}

// Push records a freshly committed batch and clears the redo side.
// Empty batches are ignored so that read-only transactions leave the
// history untouched.
func (s *Stack) Push(b *Batch) {
	if b == nil || b.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = append(s.undo, b)
	s.redo = nil
}

// PeekUndo returns the batch that Undo would apply, without removing
// it. Returns nil when the undo side is empty.
func (s *Stack) PeekUndo() *Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.undo) == 0 {
		return nil
	}
	return s.undo[len(s.undo)-1]
}

// PeekRedo returns the batch that Redo would apply, without removing
// it. Returns nil when the redo side is empty.
func (s *Stack) PeekRedo() *Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.redo) == 0 {
		return nil
	}
	return s.redo[len(s.redo)-1]
}

// ShiftToRedo moves the top undo batch onto the redo side. Called by
// the replayer only after the inverse transaction committed; a failed
// undo leaves the history unchanged.
func (s *Stack) ShiftToRedo(b *Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 || s.undo[len(s.undo)-1] != b {
		return
	}
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, b)
}

// ShiftToUndo moves the top redo batch back onto the undo side after
// a committed forward replay.
func (s *Stack) ShiftToUndo(b *Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 || s.redo[len(s.redo)-1] != b {
		return
	}
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, b)
}

// Depths returns the current sizes of both sides.
func (s *Stack) Depths() (undoDepth, redoDepth int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.undo), len(s.redo)
}

// Clear drops the whole history. Used on logout and tenant switch,
// where replaying foreign batches would violate tenant isolation.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = nil
	s.redo = nil
}
