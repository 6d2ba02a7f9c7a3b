// Package charset builds the ordered character-set alphabet from a search
// configuration and enumerates fixed-length candidates over it as a base-|Σ| numeral
// system: ordinal 0 is the all-first-symbol string, advancing one ordinal at a time
// is an in-place odometer increment.
//
// Candidates are produced by treating the alphabet as a base-|Σ| numeral system: a
// fixed-size byte alphabet plus deterministic ordinal seek/advance, since exhaustive
// enumeration, not sampling, is what the search requires.
package charset

// MaxLength is the longest candidate password the engine will enumerate.
const MaxLength = 16

// MaxAlphabetSize is the largest alphabet this engine supports: 10 digits + 26 lower
// + 26 upper + 32 symbols = 94 distinct bytes.
const MaxAlphabetSize = 94

// Digits, Lowercase, Uppercase, and Symbols are the four character classes combined,
// in this fixed order, to build an Alphabet.
const (
	Digits    = "0123456789"
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Symbols   = `!"#$%&'()*+,-./:;<=>?@[\]^_` + "`" + `{|}~`
)

// Alphabet is an ordered, duplicate-free sequence of bytes, held inline (no heap
// allocation) so it can be copied freely into each worker.
type Alphabet struct {
	bytes [MaxAlphabetSize]byte
	n     int
	// index maps a byte value to its position in bytes, or -1 if the byte isn't in
	// the alphabet. Used by Advance to find a symbol's successor in O(1).
	index [256]int16
}

// Build concatenates the requested classes, in the fixed order numbers, lowercase,
// uppercase, symbols, de-duplicating repeated bytes while preserving order.
func Build(useNumbers, useLowercase, useUppercase, useSymbols bool) Alphabet {
	var a Alphabet
	for i := range a.index {
		a.index[i] = -1
	}
	add := func(class string) {
		for i := 0; i < len(class); i++ {
			b := class[i]
			if a.index[b] >= 0 {
				continue
			}
			a.index[b] = int16(a.n)
			a.bytes[a.n] = b
			a.n++
		}
	}
	if useNumbers {
		add(Digits)
	}
	if useLowercase {
		add(Lowercase)
	}
	if useUppercase {
		add(Uppercase)
	}
	if useSymbols {
		add(Symbols)
	}
	return a
}

// Len returns the number of distinct bytes in the alphabet.
func (a *Alphabet) Len() int { return a.n }

// Bytes returns the alphabet's symbols in order. The returned slice aliases the
// Alphabet's internal array and must not be mutated or retained past the
// Alphabet's lifetime.
func (a *Alphabet) Bytes() []byte { return a.bytes[:a.n] }

// Seek writes the length-byte candidate for ordinal n into buf (which must have
// length == length): the L-digit base-|Σ| representation of n, most-significant
// digit first (buf[0]), least-significant last (buf[length-1]). Complexity O(length).
func (a *Alphabet) Seek(n uint64, length int, buf []byte) {
	base := uint64(a.n)
	for i := length - 1; i >= 0; i-- {
		buf[i] = a.bytes[n%base]
		n /= base
	}
}

// Advance increments buf (a length-byte candidate produced by Seek or a prior
// Advance) to its successor in place. Returns false if incrementing carried out of
// the most significant digit (buf wrapped back to the all-first-symbol string,
// meaning the caller has cycled past the last candidate of this length).
// Complexity amortized O(1).
func (a *Alphabet) Advance(buf []byte) bool {
	last := int16(a.n - 1)
	for i := len(buf) - 1; i >= 0; i-- {
		idx := a.index[buf[i]]
		if idx == last {
			buf[i] = a.bytes[0]
			continue
		}
		buf[i] = a.bytes[idx+1]
		return true
	}
	return false
}
