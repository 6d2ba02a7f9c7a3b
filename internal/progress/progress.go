// Package progress implements the periodic progress reporter: a dedicated goroutine
// that samples the coordination plane at a fixed cadence and publishes Snapshots to
// an observer channel.
package progress

import (
	"time"

	"zipcrack/internal/coordination"
)

// Phase identifies which stage of the search a Snapshot was taken during.
type Phase string

const (
	PhaseDictionary Phase = "Dictionary"
	PhaseRunning    Phase = "Running"
	PhaseDone       Phase = "Done"
	PhaseError      Phase = "Error"
)

// Snapshot is a single progress sample.
type Snapshot struct {
	Attempts           uint64
	Elapsed            time.Duration
	PasswordsPerSecond float64
	CurrentPassword    string
	Phase              Phase
}

// Cadence is the fixed reporting interval: 500ms, no backoff.
const Cadence = 500 * time.Millisecond

// PhaseFunc returns the current phase; the scheduler supplies one that reflects
// which of its three phases is currently running.
type PhaseFunc func() Phase

// Run drives the reporter loop: a ticker plus a non-blocking channel send that
// drops a snapshot rather than ever blocking a worker. It exits when done is
// closed.
func Run(state *coordination.State, start time.Time, phase PhaseFunc, out chan<- Snapshot, done <-chan struct{}) {
	t := time.NewTicker(Cadence)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-t.C:
			attempts := state.Attempts()
			elapsed := now.Sub(start)
			var pps float64
			if secs := elapsed.Seconds(); secs > 0 {
				pps = float64(attempts) / secs
			}
			snap := Snapshot{
				Attempts:           attempts,
				Elapsed:            elapsed,
				PasswordsPerSecond: pps,
				CurrentPassword:    state.LastSample(),
				Phase:              phase(),
			}
			select {
			case out <- snap:
			default:
				// Observer is slow; drop this sample. The terminal result is
				// delivered separately and is never dropped.
			}
		}
	}
}
