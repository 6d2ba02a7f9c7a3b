package progress

import (
	"testing"
	"time"

	"zipcrack/internal/coordination"
)

func TestRunPublishesSnapshotAtCadence(t *testing.T) {
	state := coordination.New(coordination.PauseFlag())
	state.AddAttempts(1000)
	state.Sample([]byte("abcd"))

	out := make(chan Snapshot, 4)
	done := make(chan struct{})
	phase := func() Phase { return PhaseRunning }

	start := time.Now()
	go Run(state, start, phase, out, done)
	defer close(done)

	select {
	case snap := <-out:
		if snap.Attempts != 1000 {
			t.Fatalf("Attempts = %d, want 1000", snap.Attempts)
		}
		if snap.CurrentPassword != "abcd" {
			t.Fatalf("CurrentPassword = %q, want %q", snap.CurrentPassword, "abcd")
		}
		if snap.Phase != PhaseRunning {
			t.Fatalf("Phase = %q, want %q", snap.Phase, PhaseRunning)
		}
		if snap.PasswordsPerSecond <= 0 {
			t.Fatalf("PasswordsPerSecond = %v, want > 0", snap.PasswordsPerSecond)
		}
	case <-time.After(2 * Cadence):
		t.Fatal("timed out waiting for a snapshot")
	}
}

func TestRunStopsWhenDoneClosed(t *testing.T) {
	state := coordination.New(coordination.PauseFlag())
	out := make(chan Snapshot)
	done := make(chan struct{})

	finished := make(chan struct{})
	go func() {
		Run(state, time.Now(), func() Phase { return PhaseRunning }, out, done)
		close(finished)
	}()

	close(done)

	select {
	case <-finished:
	case <-time.After(2 * Cadence):
		t.Fatal("Run did not return after done was closed")
	}
}

func TestRunDropsSnapshotOnSlowObserver(t *testing.T) {
	state := coordination.New(coordination.PauseFlag())
	out := make(chan Snapshot) // unbuffered, never read
	done := make(chan struct{})

	go Run(state, time.Now(), func() Phase { return PhaseRunning }, out, done)

	// Give the ticker time to fire at least once against the unread channel; Run
	// must not block forever on the non-blocking send.
	time.Sleep(2 * Cadence)
	close(done)
}
