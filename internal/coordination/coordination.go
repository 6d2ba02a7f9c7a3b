// Package coordination implements the engine's shared coordination plane: the
// atomic attempts counter, the found flag, the last-sampled candidate, and the
// process-wide pause flag, plus the per-batch check every worker performs.
package coordination

import (
	"sync"
	"sync/atomic"
	"time"
)

// BatchSize is the number of candidates a worker processes before it performs the
// mandatory pause/attempts/sample check. It is a power of two so the check can be a
// cheap bitmask test.
const BatchSize = 16384

// PauseSleep is how long a worker sleeps, in a tight check loop, while paused.
const PauseSleep = 50 * time.Millisecond

// sampleCap bounds the byte length of a sampled candidate (MaxLength from charset,
// kept here as a literal rather than imported).
const sampleCap = 16

// State is the per-invocation shared coordination state. attempts, found and the
// paused flag are accessed atomically and the sample is guarded by a mutex (see
// Sample); the engine does not rely on inter-thread happens-before
// between individual candidate checks. Zero value is not ready for use; construct
// with New.
type State struct {
	attempts uint64
	found    uint32

	sampleMu  sync.Mutex
	sampleBuf [sampleCap]byte
	sampleLen int

	paused *uint32
}

// New returns a fresh coordination state bound to the given process-wide pause
// flag (see PauseFlag).
func New(paused *uint32) *State {
	return &State{paused: paused}
}

// AddAttempts increments the attempts counter by delta. Called once per batch by
// each worker, never once per candidate, to keep the atomic off the innermost loop.
func (s *State) AddAttempts(delta uint64) {
	atomic.AddUint64(&s.attempts, delta)
}

// Attempts returns the current attempts count. Monotonically non-decreasing from
// any observer's perspective.
func (s *State) Attempts() uint64 {
	return atomic.LoadUint64(&s.attempts)
}

// SetFound marks the search as concluded (a witness was confirmed, or the observer
// detached and cancellation is being modeled as a poison found=true). Idempotent;
// safe to call from multiple goroutines, though the tie-break rule means only the
// worker that has just confirmed a witness should call it with a real password.
func (s *State) SetFound() {
	atomic.StoreUint32(&s.found, 1)
}

// Found reports whether the search has concluded.
func (s *State) Found() bool {
	return atomic.LoadUint32(&s.found) != 0
}

// Sample overwrites the last-sampled candidate. Guarded by a lightweight mutex
// rather than left as a torn atomic string write, since Go string/slice headers are
// multi-word and torn reads of those are not bounded the way a single byte buffer
// write is.
func (s *State) Sample(candidate []byte) {
	s.sampleMu.Lock()
	n := copy(s.sampleBuf[:], candidate)
	s.sampleLen = n
	s.sampleMu.Unlock()
}

// LastSample returns a copy of the most recently sampled candidate. May be stale by
// design; purely informational.
func (s *State) LastSample() string {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()
	return string(s.sampleBuf[:s.sampleLen])
}

// Paused reports the current value of the process-wide pause flag.
func (s *State) Paused() bool {
	return atomic.LoadUint32(s.paused) != 0
}

// WaitWhilePaused blocks the calling worker in PauseSleep increments for as long as
// the process-wide pause flag is set, or until found becomes true (so a paused
// worker still notices cancellation/completion promptly).
func (s *State) WaitWhilePaused() {
	for s.Paused() && !s.Found() {
		time.Sleep(PauseSleep)
	}
}

// pauseFlag is the process-wide pause flag shared across invocations, lazily
// initialized on first access.
var (
	pauseFlagOnce sync.Once
	pauseFlag     uint32
)

// PauseFlag returns the process-wide pause flag pointer, initializing it on first
// use. The same flag is shared by every Engine in the process.
func PauseFlag() *uint32 {
	pauseFlagOnce.Do(func() {})
	return &pauseFlag
}

// SetPaused writes the process-wide pause flag. Idempotent: calling it twice with
// the same value has no additional effect.
func SetPaused(paused bool) {
	var v uint32
	if paused {
		v = 1
	}
	atomic.StoreUint32(PauseFlag(), v)
}
