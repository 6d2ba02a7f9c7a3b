package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"zipcrack/internal/archive"
	"zipcrack/internal/charset"
	"zipcrack/internal/coordination"
	"zipcrack/internal/dictionary"
	"zipcrack/internal/progress"
	"zipcrack/internal/scheduler"
	"zipcrack/internal/testziputil"
	"zipcrack/internal/ziparchive"
)

func buildHandle(t *testing.T, password string) (*archive.Header, *ziparchive.Handle) {
	t.Helper()
	data := testziputil.Build(testziputil.Options{
		Name:      "secret.txt",
		Password:  password,
		Plaintext: []byte("the treasure is buried"),
		Method:    archive.CompressionDeflate,
	})
	hdr, err := archive.Locate(data)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	handle, err := ziparchive.NewHandle(data, hdr)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	return hdr, handle
}

func newState() *coordination.State {
	var paused uint32
	return coordination.New(&paused)
}

func noopPhase(progress.Phase) {}

func TestRunFindsTinyBruteForcePassword(t *testing.T) {
	hdr, handle := buildHandle(t, "42")
	cfg := scheduler.Config{
		Alphabet:  charset.Build(true, false, false, false),
		MinLength: 1,
		MaxLength: 2,
		Workers:   2,
	}
	res, err := scheduler.Run(context.Background(), cfg, dictionary.New(nil, 1), hdr, handle, newState(), noopPhase)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Found || res.Password != "42" {
		t.Fatalf("Run() = %+v, want Password=42", res)
	}
}

func TestRunFindsDictionaryPassword(t *testing.T) {
	hdr, handle := buildHandle(t, "password")
	cfg := scheduler.Config{
		Alphabet:      charset.Build(true, true, false, false),
		MinLength:     1,
		MaxLength:     2,
		Workers:       2,
		UseDictionary: true,
	}
	res, err := scheduler.Run(context.Background(), cfg, dictionary.New(nil, 16), hdr, handle, newState(), noopPhase)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Found || res.Password != "password" {
		t.Fatalf("Run() = %+v, want Password=password", res)
	}
}

func TestCustomWordWinsBeforeCorpus(t *testing.T) {
	hdr, handle := buildHandle(t, "letmein")
	dict := dictionary.New([]string{"letmein"}, 16)
	cfg := scheduler.Config{
		Alphabet:      charset.Build(true, true, false, false),
		MinLength:     1,
		MaxLength:     1,
		Workers:       2,
		UseDictionary: true,
	}
	state := newState()
	res, err := scheduler.Run(context.Background(), cfg, dict, hdr, handle, state, noopPhase)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Found || res.Password != "letmein" {
		t.Fatalf("Run() = %+v, want Password=letmein", res)
	}
	// "letmein" is also a line in the embedded corpus; the custom-word phase runs
	// strictly before the corpus phase, so only a handful of attempts (the single
	// custom word) should have been recorded, not the full corpus scan.
	if attempts := state.Attempts(); attempts > 1 {
		t.Fatalf("Attempts() = %d, want 1 (custom word wins before corpus scan)", attempts)
	}
}

func TestRunExhaustsWithoutMatch(t *testing.T) {
	hdr, handle := buildHandle(t, "zz")
	cfg := scheduler.Config{
		Alphabet:  charset.Build(true, false, false, false),
		MinLength: 1,
		MaxLength: 2,
		Workers:   2,
	}
	state := newState()
	res, err := scheduler.Run(context.Background(), cfg, dictionary.New(nil, 1), hdr, handle, state, noopPhase)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Found {
		t.Fatalf("Run() = %+v, want not found (true password outside numeric alphabet)", res)
	}
	// |Σ|=10: 10 candidates of length 1, 100 of length 2.
	if want := uint64(10 + 100); state.Attempts() != want {
		t.Fatalf("Attempts() = %d, want %d", state.Attempts(), want)
	}
}

func TestRunHonorsPauseDuringCorpusScan(t *testing.T) {
	hdr, handle := buildHandle(t, "password")
	cfg := scheduler.Config{
		Alphabet:      charset.Build(true, true, false, false),
		MinLength:     1,
		MaxLength:     1,
		Workers:       2,
		UseDictionary: true,
	}
	var pauseFlag uint32
	atomic.StoreUint32(&pauseFlag, 1)
	state := coordination.New(&pauseFlag)

	done := make(chan scheduler.Result, 1)
	go func() {
		res, err := scheduler.Run(context.Background(), cfg, dictionary.New(nil, 16), hdr, handle, state, noopPhase)
		if err != nil {
			t.Errorf("Run: %v", err)
		}
		done <- res
	}()

	select {
	case <-done:
		t.Fatal("Run() completed while paused; pause was not honored during the corpus phase")
	case <-time.After(200 * time.Millisecond):
	}

	atomic.StoreUint32(&pauseFlag, 0)

	select {
	case res := <-done:
		if !res.Found || res.Password != "password" {
			t.Fatalf("Run() = %+v, want Password=password", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not complete after unpausing")
	}
}

func TestRunRespectsCancellation(t *testing.T) {
	hdr, handle := buildHandle(t, "unreachable-password")
	cfg := scheduler.Config{
		Alphabet:  charset.Build(true, true, true, true),
		MinLength: 6,
		MaxLength: 8,
		Workers:   4,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := scheduler.Run(ctx, cfg, dictionary.New(nil, 1), hdr, handle, newState(), noopPhase)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Found {
		t.Fatal("Run() found a password after immediate cancellation")
	}
}
