package estimate_test

import (
	"math/big"
	"testing"

	"zipcrack/internal/estimate"
)

func TestBruteForceSingleLengthSingleSymbol(t *testing.T) {
	got := estimate.BruteForce(1, 1, 1)
	if got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("BruteForce(1,1,1) = %s, want 1", got)
	}
}

func TestBruteForceMatchesManualSum(t *testing.T) {
	// |Σ|=26, L in [1,3]: 26 + 676 + 17576
	got := estimate.BruteForce(26, 1, 3)
	want := big.NewInt(26 + 676 + 17576)
	if got.Cmp(want) != 0 {
		t.Fatalf("BruteForce(26,1,3) = %s, want %s", got, want)
	}
}

func TestBruteForceZeroAlphabet(t *testing.T) {
	got := estimate.BruteForce(0, 1, 8)
	if got.Sign() != 0 {
		t.Fatalf("BruteForce(0,...) = %s, want 0", got)
	}
}

func TestBruteForceMaxLengthDoesNotOverflow(t *testing.T) {
	got := estimate.BruteForce(94, 1, 16)
	if got.Sign() <= 0 {
		t.Fatal("expected a large positive arbitrary-precision result")
	}
	// 94^16 alone vastly exceeds uint64 range; confirm big.Int actually grew past it.
	maxUint64 := new(big.Int).SetUint64(^uint64(0))
	if got.Cmp(maxUint64) <= 0 {
		t.Fatal("expected the 94^16 term to exceed a uint64, proving arbitrary precision is in play")
	}
}

func TestDictionaryAndTotal(t *testing.T) {
	d := estimate.Dictionary(1, 99)
	if d.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("Dictionary(1,99) = %s, want 100", d)
	}
	total := estimate.Total(10, 1, 1, 1, 99, true)
	if total.Cmp(big.NewInt(110)) != 0 {
		t.Fatalf("Total(...) = %s, want 110", total)
	}
	withoutDict := estimate.Total(10, 1, 1, 1, 99, false)
	if withoutDict.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("Total(..., false) = %s, want 10", withoutDict)
	}
}
