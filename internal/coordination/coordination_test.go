package coordination_test

import (
	"testing"

	"zipcrack/internal/coordination"
)

func TestSetPausedIdempotent(t *testing.T) {
	coordination.SetPaused(true)
	coordination.SetPaused(true)
	st := coordination.New(coordination.PauseFlag())
	if !st.Paused() {
		t.Fatal("expected paused after two SetPaused(true) calls")
	}

	coordination.SetPaused(false)
	coordination.SetPaused(false)
	if st.Paused() {
		t.Fatal("expected unpaused after two SetPaused(false) calls")
	}
}

func TestAttemptsMonotonic(t *testing.T) {
	st := coordination.New(new(uint32))
	var last uint64
	for i := 0; i < 5; i++ {
		st.AddAttempts(coordination.BatchSize)
		cur := st.Attempts()
		if cur < last {
			t.Fatalf("attempts decreased: %d -> %d", last, cur)
		}
		last = cur
	}
}

func TestFoundSetOnce(t *testing.T) {
	st := coordination.New(new(uint32))
	if st.Found() {
		t.Fatal("found should start false")
	}
	st.SetFound()
	st.SetFound() // idempotent, must not panic or flip back
	if !st.Found() {
		t.Fatal("found should be true after SetFound")
	}
}

func TestSampleRoundTrip(t *testing.T) {
	st := coordination.New(new(uint32))
	st.Sample([]byte("abc123"))
	if got := st.LastSample(); got != "abc123" {
		t.Fatalf("LastSample() = %q, want %q", got, "abc123")
	}
}
