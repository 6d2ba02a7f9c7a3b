package zipcrack

import (
	"context"
	"errors"
	"testing"
	"time"

	"zipcrack/internal/archive"
	"zipcrack/internal/testziputil"
	"zipcrack/internal/zcerr"
)

func buildArchive(t *testing.T, password string, plaintext []byte, method uint16) []byte {
	t.Helper()
	return testziputil.Build(testziputil.Options{
		Name:      "hello.txt",
		Password:  password,
		Plaintext: plaintext,
		Method:    method,
	})
}

// Scenario 1: tiny numeric password, method 0 (stored).
func TestScenarioTinyNumeric(t *testing.T) {
	data := buildArchive(t, "42", []byte("Hi"), archive.CompressionStored)
	engine, err := NewEngine(data)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	cfg := Config{MinLength: 1, MaxLength: 2, UseNumbers: true}
	_, results := engine.Crack(context.Background(), cfg)

	res := <-results
	if res.Err != nil || res.Password != "42" {
		t.Fatalf("Crack() result = %+v, want Password=42", res)
	}
}

// Scenario 2: dictionary-only hit, brute force never entered.
func TestScenarioDictionaryHit(t *testing.T) {
	data := buildArchive(t, "password", []byte("shh"), archive.CompressionDeflate)
	engine, err := NewEngine(data)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	cfg := Config{MinLength: 1, MaxLength: 8, UseDictionary: true}
	_, results := engine.Crack(context.Background(), cfg)

	res := <-results
	if res.Err != nil || res.Password != "password" {
		t.Fatalf("Crack() result = %+v, want Password=password", res)
	}
}

// Scenario 3: custom word wins over the embedded corpus. The attempt count for this
// case is checked in internal/scheduler's TestCustomWordWinsBeforeCorpus.
func TestScenarioCustomWordWins(t *testing.T) {
	data := buildArchive(t, "letmein", []byte("shh"), archive.CompressionDeflate)
	engine, err := NewEngine(data)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	cfg := Config{MinLength: 1, MaxLength: 7, UseDictionary: true, CustomWords: []string{"letmein"}}

	snapshots, results := engine.Crack(context.Background(), cfg)
	var last Snapshot
	done := make(chan struct{})
	go func() {
		for s := range snapshots {
			last = s
		}
		close(done)
	}()

	res := <-results
	<-done
	if res.Err != nil || res.Password != "letmein" {
		t.Fatalf("Crack() result = %+v, want Password=letmein", res)
	}
	_ = last
}

// Scenario 4: not found. The exhaustive count for this config is checked by
// TestEstimateMatchesScenarioNotFound.
func TestScenarioNotFound(t *testing.T) {
	data := buildArchive(t, "Zx9!", []byte("shh"), archive.CompressionDeflate)
	engine, err := NewEngine(data)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	cfg := Config{MinLength: 1, MaxLength: 3, UseLowercase: true}
	_, results := engine.Crack(context.Background(), cfg)

	res := <-results
	if !errors.Is(res.Err, zcerr.ErrNotFound) {
		t.Fatalf("Crack() result = %+v, want ErrNotFound", res)
	}
}

// Scenario 5: AES-encrypted entry is rejected synchronously, before Crack starts.
func TestScenarioAESRejection(t *testing.T) {
	data := buildArchive(t, "irrelevant", []byte("shh"), archive.CompressionDeflate)
	// Set the general-purpose flag's strong-encryption bit directly; simplest
	// deterministic way to trigger UnsupportedEncryption without hand-building a
	// WinZip-AES extra-field record.
	markStrongEncryption(data)

	_, err := NewEngine(data)
	if !errors.Is(err, zcerr.ErrUnsupportedEncryption) {
		t.Fatalf("NewEngine() err = %v, want ErrUnsupportedEncryption", err)
	}
}

func markStrongEncryption(data []byte) {
	// Local-file-header general-purpose bit flag is at offset 6 (2 bytes, LE);
	// bit 6 (1<<6) signals strong encryption.
	data[6] |= 1 << 6
}

// Scenario 6: cancelling the context stops a long-running search promptly.
func TestScenarioCancellation(t *testing.T) {
	data := buildArchive(t, "unreachable-long-password", []byte("shh"), archive.CompressionDeflate)
	engine, err := NewEngine(data)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	cfg := Config{MinLength: 7, MaxLength: 9, UseLowercase: true, UseUppercase: true, UseNumbers: true, UseSymbols: true}

	ctx, cancel := context.WithCancel(context.Background())
	_, results := engine.Crack(ctx, cfg)

	time.AfterFunc(200*time.Millisecond, cancel)

	select {
	case res := <-results:
		if !errors.Is(res.Err, zcerr.ErrCancelled) {
			t.Fatalf("Crack() result = %+v, want ErrCancelled", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Crack() did not terminate within 2s of cancellation")
	}
}

func TestSetPausedIdempotentAcrossInvocations(t *testing.T) {
	SetPaused(true)
	SetPaused(true)
	SetPaused(false)
	SetPaused(false)
}

func TestEstimateMatchesScenarioNotFound(t *testing.T) {
	cfg := Config{MinLength: 1, MaxLength: 3, UseLowercase: true}
	got, err := Estimate(cfg)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if want := int64(26 + 676 + 17576); got.Int64() != want {
		t.Fatalf("Estimate() = %s, want %d", got, want)
	}
}

func TestTestSingleAcceptsTruePasswordOnly(t *testing.T) {
	data := buildArchive(t, "42", []byte("Hi"), archive.CompressionStored)
	ok, err := TestSingle(data, "42")
	if err != nil || !ok {
		t.Fatalf("TestSingle(true password) = %v, %v, want true, nil", ok, err)
	}
	ok, err = TestSingle(data, "wrong")
	if err != nil || ok {
		t.Fatalf("TestSingle(wrong password) = %v, %v, want false, nil", ok, err)
	}
}

func TestCrackRejectsInvalidConfigBeforeStarting(t *testing.T) {
	data := buildArchive(t, "42", []byte("Hi"), archive.CompressionStored)
	engine, err := NewEngine(data)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	_, results := engine.Crack(context.Background(), Config{MinLength: 2, MaxLength: 1})
	res := <-results
	if !errors.Is(res.Err, zcerr.ErrInvalidConfig) {
		t.Fatalf("Crack() result = %+v, want ErrInvalidConfig", res)
	}
}
