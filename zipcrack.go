// Package zipcrack is the public API surface: Crack, TestSingle, Estimate, and
// SetPaused, wired over the internal locator/validator/scheduler/progress packages.
package zipcrack

import (
	"context"
	"fmt"
	"math/big"
	"runtime"
	"sync"
	"time"

	"zipcrack/internal/archive"
	"zipcrack/internal/charset"
	"zipcrack/internal/coordination"
	"zipcrack/internal/dictionary"
	"zipcrack/internal/estimate"
	"zipcrack/internal/progress"
	"zipcrack/internal/scheduler"
	"zipcrack/internal/validate"
	"zipcrack/internal/zcerr"
	"zipcrack/internal/zclog"
	"zipcrack/internal/ziparchive"
)

// Config is the immutable per-invocation search configuration.
type Config struct {
	MinLength int
	MaxLength int

	UseLowercase bool
	UseUppercase bool
	UseNumbers   bool
	UseSymbols   bool

	UseDictionary bool
	CustomWords   []string

	// Workers overrides the worker goroutine count. Zero means runtime.NumCPU().
	Workers int
}

// Snapshot re-exports the progress package's snapshot type so callers never need to
// import internal/progress directly.
type Snapshot = progress.Snapshot

// Result is the terminal value Crack's result channel delivers exactly once.
type Result struct {
	Password string
	Err      error
}

// Validate checks cfg's invariants, independent of any archive: length bounds and
// at least one candidate source (a character class or the dictionary) enabled.
func (cfg Config) Validate() error {
	if cfg.MinLength < 1 || cfg.MaxLength < cfg.MinLength || cfg.MaxLength > charset.MaxLength {
		return fmt.Errorf("min/max length out of range [1,%d]: %w", charset.MaxLength, zcerr.ErrInvalidConfig)
	}
	hasClass := cfg.UseLowercase || cfg.UseUppercase || cfg.UseNumbers || cfg.UseSymbols
	if !hasClass && !cfg.UseDictionary {
		return fmt.Errorf("no character class enabled and dictionary disabled: %w", zcerr.ErrInvalidConfig)
	}
	return nil
}

func (cfg Config) alphabet() charset.Alphabet {
	return charset.Build(cfg.UseNumbers, cfg.UseLowercase, cfg.UseUppercase, cfg.UseSymbols)
}

func (cfg Config) workers() int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.NumCPU()
}

// Engine binds a single archive's reference header to an invocation. Build one with
// NewEngine, then call Crack any number of times (each call is an independent
// search over the same archive).
type Engine struct {
	zipBytes []byte
	header   *archive.Header
	handle   *ziparchive.Handle
}

// NewEngine validates the archive and locates its first attackable entry
// synchronously, before any worker starts, so a malformed or unsupported archive
// never needs to be reported mid-stream.
func NewEngine(zipBytes []byte) (*Engine, error) {
	hdr, err := archive.Locate(zipBytes)
	if err != nil {
		return nil, err
	}
	handle, err := ziparchive.NewHandle(zipBytes, hdr)
	if err != nil {
		return nil, err
	}
	return &Engine{zipBytes: zipBytes, header: hdr, handle: handle}, nil
}

// Crack runs the three-phase search in a background goroutine,
// returning a snapshot stream and a result channel. The caller receives exactly one
// Result and then both channels are closed. Detaching the observer (not reading the
// snapshot channel) never blocks the search; cancelling ctx stops it early and
// reports zcerr.ErrCancelled.
func (e *Engine) Crack(ctx context.Context, cfg Config) (<-chan Snapshot, <-chan Result) {
	snapshots := make(chan Snapshot)
	results := make(chan Result, 1)

	if err := cfg.Validate(); err != nil {
		close(snapshots)
		results <- Result{Err: err}
		close(results)
		return snapshots, results
	}

	go e.run(ctx, cfg, snapshots, results)
	return snapshots, results
}

func (e *Engine) run(ctx context.Context, cfg Config, snapshots chan<- Snapshot, results chan<- Result) {
	defer close(snapshots)
	defer close(results)

	state := coordination.New(coordination.PauseFlag())
	start := time.Now()

	var phaseMu sync.Mutex
	phase := progress.PhaseDictionary
	if !cfg.UseDictionary {
		phase = progress.PhaseRunning
	}
	setPhase := func(p progress.Phase) {
		phaseMu.Lock()
		phase = p
		phaseMu.Unlock()
	}
	currentPhase := func() progress.Phase {
		phaseMu.Lock()
		defer phaseMu.Unlock()
		return phase
	}

	done := make(chan struct{})
	go progress.Run(state, start, currentPhase, snapshots, done)

	dict := dictionary.New(cfg.CustomWords, cfg.MaxLength)
	schedCfg := scheduler.Config{
		Alphabet:      cfg.alphabet(),
		MinLength:     cfg.MinLength,
		MaxLength:     cfg.MaxLength,
		Workers:       cfg.workers(),
		UseDictionary: cfg.UseDictionary,
	}

	zclog.Info("crack started: workers=%d min=%d max=%d dictionary=%v", schedCfg.Workers, cfg.MinLength, cfg.MaxLength, cfg.UseDictionary)

	res, err := scheduler.Run(ctx, schedCfg, dict, e.header, e.handle, state, setPhase)
	close(done)

	var final Result
	switch {
	case err != nil:
		setPhase(progress.PhaseError)
		final = Result{Err: err}
	case res.Found:
		setPhase(progress.PhaseDone)
		zclog.Info("crack succeeded after %d attempts", state.Attempts())
		final = Result{Password: res.Password}
	case ctxDone(ctx):
		setPhase(progress.PhaseError)
		final = Result{Err: zcerr.ErrCancelled}
	default:
		setPhase(progress.PhaseDone)
		zclog.Info("crack exhausted search space after %d attempts", state.Attempts())
		final = Result{Err: zcerr.ErrNotFound}
	}

	// Final snapshot: the password on success, the error kind's token otherwise.
	// Sent without blocking, like every other snapshot.
	token := final.Password
	if final.Err != nil {
		token = zcerr.KindOf(final.Err).String()
	}
	elapsed := time.Since(start)
	select {
	case snapshots <- Snapshot{Attempts: state.Attempts(), Elapsed: elapsed, PasswordsPerSecond: float64(state.Attempts()) / elapsed.Seconds(), CurrentPassword: token, Phase: currentPhase()}:
	default:
	}
	results <- final
}

func ctxDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// TestSingle runs the fast check then, on a pass, the full decrypt-verify check for
// one candidate password against archive.
func TestSingle(zipBytes []byte, password string) (bool, error) {
	hdr, err := archive.Locate(zipBytes)
	if err != nil {
		return false, err
	}
	handle, err := ziparchive.NewHandle(zipBytes, hdr)
	if err != nil {
		return false, err
	}
	candidate := []byte(password)
	if !validate.Fast(candidate, hdr) {
		return false, nil
	}
	worker, err := handle.NewWorker()
	if err != nil {
		return false, err
	}
	return validate.Full(worker, candidate), nil
}

// Estimate returns the exact candidate count cfg would enumerate: the brute-force
// sum over [MinLength,MaxLength] plus, if enabled, the dictionary size.
func Estimate(cfg Config) (*big.Int, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	alphabet := cfg.alphabet()
	dict := dictionary.New(cfg.CustomWords, cfg.MaxLength)
	return estimate.Total(alphabet.Len(), cfg.MinLength, cfg.MaxLength, len(dict.CustomWords), dict.CorpusLineCount(), cfg.UseDictionary), nil
}

// SetPaused writes the process-wide pause flag. Idempotent.
func SetPaused(paused bool) {
	coordination.SetPaused(paused)
}
