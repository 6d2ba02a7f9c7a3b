// Package scheduler implements the work scheduler: it drives the custom-word,
// embedded-dictionary, and brute-force phases in order, partitioning the
// brute-force search space into ordinal ranges distributed across worker
// goroutines, and returns the first confirmed witness.
//
// Ranges are handed out through a single atomic chunk cursor rather than explicit
// per-worker queues with steal operations: every idle worker races the same cursor
// for the next unclaimed chunk, which gets the same load-balancing effect as work
// stealing with a much simpler implementation.
package scheduler

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"

	"zipcrack/internal/archive"
	"zipcrack/internal/charset"
	"zipcrack/internal/coordination"
	"zipcrack/internal/dictionary"
	"zipcrack/internal/progress"
	"zipcrack/internal/validate"
	"zipcrack/internal/ziparchive"
)

// chunkSize is the number of ordinals a single brute-force work item covers.
const chunkSize = 1 << 16

// Config carries everything the scheduler needs beyond the archive header/handle
// and the shared coordination state.
type Config struct {
	Alphabet      charset.Alphabet
	MinLength     int
	MaxLength     int
	Workers       int
	UseDictionary bool
}

// Result is the scheduler's outcome: either a confirmed witness or nothing (the
// caller distinguishes "exhausted" from "cancelled" via the coordination state).
type Result struct {
	Password string
	Found    bool
}

// PhaseSetter is called whenever the scheduler transitions between phases, so the
// progress reporter can report the right Phase value.
type PhaseSetter func(progress.Phase)

// Run drives all three phases in order and returns on the first witness, on
// exhaustion, or on cancellation (ctx.Done() or state.Found() observed without a
// confirmed password, which the caller interprets as cancellation).
func Run(ctx context.Context, cfg Config, dict *dictionary.Source, hdr *archive.Header, handle *ziparchive.Handle, state *coordination.State, setPhase PhaseSetter) (Result, error) {
	if cfg.UseDictionary {
		setPhase(progress.PhaseDictionary)

		res, err := runCustomWords(ctx, dict.CustomWords, hdr, handle, state)
		if err != nil {
			return Result{}, err
		}
		if res.Found {
			return res, nil
		}
		if cancelled(ctx, state) {
			return Result{}, nil
		}

		res, err = runCorpus(ctx, cfg.Workers, dict, hdr, handle, state)
		if err != nil {
			return Result{}, err
		}
		if res.Found {
			return res, nil
		}
		if cancelled(ctx, state) {
			return Result{}, nil
		}
	}

	setPhase(progress.PhaseRunning)
	alphabet := cfg.Alphabet
	for length := cfg.MinLength; length <= cfg.MaxLength; length++ {
		res, err := runBruteForceLength(ctx, cfg.Workers, &alphabet, length, hdr, handle, state)
		if err != nil {
			return Result{}, err
		}
		if res.Found {
			return res, nil
		}
		if cancelled(ctx, state) {
			return Result{}, nil
		}
	}

	return Result{}, nil
}

func cancelled(ctx context.Context, state *coordination.State) bool {
	select {
	case <-ctx.Done():
		return true
	default:
	}
	// state.Found() without a recorded password also means cancellation: the only
	// other way found becomes true is a worker that just confirmed a password,
	// which would already have returned through res.Found above.
	return state.Found()
}

// runCustomWords tries the user-supplied words sequentially: the list is small
// enough that parallelizing it isn't worth the complexity.
func runCustomWords(ctx context.Context, words []string, hdr *archive.Header, handle *ziparchive.Handle, state *coordination.State) (Result, error) {
	if len(words) == 0 {
		return Result{}, nil
	}
	worker, err := handle.NewWorker()
	if err != nil {
		return Result{}, err
	}
	for _, word := range words {
		if state.Found() {
			return Result{}, nil
		}
		select {
		case <-ctx.Done():
			return Result{}, nil
		default:
		}
		state.WaitWhilePaused()
		candidate := []byte(word)
		state.AddAttempts(1)
		state.Sample(candidate)
		if validate.Fast(candidate, hdr) && validate.Full(worker, candidate) {
			state.SetFound()
			return Result{Password: word, Found: true}, nil
		}
	}
	return Result{}, nil
}

// runCorpus scans the embedded dictionary in parallel: each worker claims one slab
// at a time and scans it sequentially, up to workers concurrently.
func runCorpus(ctx context.Context, workers int, dict *dictionary.Source, hdr *archive.Header, handle *ziparchive.Handle, state *coordination.State) (Result, error) {
	slabs := dict.Slabs()
	if len(slabs) == 0 {
		return Result{}, nil
	}

	n := workers
	if n <= 0 {
		n = 1
	}
	if n > len(slabs) {
		n = len(slabs)
	}

	jobs := make(chan []byte)
	resultCh := make(chan string, 1)
	errCh := make(chan error, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker, err := handle.NewWorker()
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
				return
			}
			for slab := range jobs {
				if state.Found() {
					return
				}
				select {
				case <-ctx.Done():
					return
				default:
				}
				state.WaitWhilePaused()
				hit := false
				var scanned uint64
				dict.EachLine(slab, func(word []byte) bool {
					if state.Found() {
						return false
					}
					state.AddAttempts(1)
					state.Sample(word)
					scanned++
					if scanned&(coordination.BatchSize-1) == 0 {
						state.WaitWhilePaused()
					}
					if validate.Fast(word, hdr) && validate.Full(worker, word) {
						state.SetFound()
						select {
						case resultCh <- string(word):
						default:
						}
						hit = true
						return false
					}
					return true
				})
				if hit {
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, slab := range slabs {
			select {
			case jobs <- slab:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(resultCh)

	select {
	case err := <-errCh:
		if err != nil {
			return Result{}, err
		}
	default:
	}

	if pw, ok := <-resultCh; ok {
		return Result{Password: pw, Found: true}, nil
	}
	return Result{}, nil
}

// runBruteForceLength partitions [0, |Σ|^length) into chunkSize-ordinal chunks and
// distributes them across workers racing a single atomic cursor.
func runBruteForceLength(ctx context.Context, workers int, alphabet *charset.Alphabet, length int, hdr *archive.Header, handle *ziparchive.Handle, state *coordination.State) (Result, error) {
	total, _ := totalForLength(uint64(alphabet.Len()), length)
	if total == 0 {
		return Result{}, nil
	}

	n := workers
	if n <= 0 {
		n = 1
	}

	var cursor uint64
	resultCh := make(chan string, 1)
	errCh := make(chan error, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker, err := handle.NewWorker()
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
				return
			}
			for {
				if state.Found() {
					return
				}
				select {
				case <-ctx.Done():
					return
				default:
				}
				idx := atomic.AddUint64(&cursor, 1) - 1
				start := idx * chunkSize
				if start >= total {
					return
				}
				end := start + chunkSize
				if end > total {
					end = total
				}
				pw, ok, err := processRange(alphabet, length, start, end, hdr, worker, state, ctx)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					return
				}
				if ok {
					state.SetFound()
					select {
					case resultCh <- pw:
					default:
					}
					return
				}
			}
		}()
	}

	wg.Wait()
	close(resultCh)

	select {
	case err := <-errCh:
		if err != nil {
			return Result{}, err
		}
	default:
	}

	if pw, ok := <-resultCh; ok {
		return Result{Password: pw, Found: true}, nil
	}
	return Result{}, nil
}

// processRange seeks to start, then repeatedly advances and validates until end,
// found becomes true, or cancellation fires. Every coordination.BatchSize
// candidates it checks paused, flushes the attempts counter, and updates the
// sample.
func processRange(alphabet *charset.Alphabet, length int, start, end uint64, hdr *archive.Header, w *ziparchive.Worker, state *coordination.State, ctx context.Context) (string, bool, error) {
	if start >= end {
		return "", false, nil
	}

	buf := make([]byte, length)
	alphabet.Seek(start, length, buf)

	var batch uint64
	for ordinal := start; ordinal < end; ordinal++ {
		if validate.Fast(buf, hdr) && validate.Full(w, buf) {
			flushPartialBatch(state, batch)
			return string(buf), true, nil
		}

		batch++
		if batch&(coordination.BatchSize-1) == 0 {
			state.AddAttempts(coordination.BatchSize)
			state.Sample(buf)
			state.WaitWhilePaused()
			if state.Found() {
				return "", false, nil
			}
			select {
			case <-ctx.Done():
				return "", false, nil
			default:
			}
		}

		if ordinal+1 < end {
			alphabet.Advance(buf)
		}
	}

	flushPartialBatch(state, batch)
	return "", false, nil
}

func flushPartialBatch(state *coordination.State, batch uint64) {
	if rem := batch & (coordination.BatchSize - 1); rem != 0 {
		state.AddAttempts(rem)
	}
}

// totalForLength returns |Σ|^length as a uint64, capped at the uint64 maximum when
// the exact value would overflow it. A search space that large is intractable to
// exhaust regardless of the cap; Estimate (internal/estimate) still reports the
// exact arbitrary-precision count for display/ETA purposes.
func totalForLength(alphabetSize uint64, length int) (total uint64, capped bool) {
	if alphabetSize == 0 {
		return 0, false
	}
	exact := new(big.Int).Exp(big.NewInt(int64(alphabetSize)), big.NewInt(int64(length)), nil)
	maxUint64 := new(big.Int).SetUint64(^uint64(0))
	if exact.Cmp(maxUint64) > 0 {
		return ^uint64(0), true
	}
	return exact.Uint64(), false
}
