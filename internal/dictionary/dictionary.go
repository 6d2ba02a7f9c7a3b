// Package dictionary implements the dictionary candidate source: user-supplied
// words first, then an embedded common-password corpus, delivered as fixed-size
// slabs for parallel fan-out. The slab-streaming shape follows the "chunked blob,
// split on boundaries, hand pieces to workers" pattern common to archive and
// decompression readers.
package dictionary

import (
	"bytes"
	_ "embed"
)

//go:embed data/common_passwords.txt
var embeddedCorpus []byte

// SlabSize is the size of each parallel-fan-out chunk of the embedded corpus.
const SlabSize = 1 << 20

// Source exposes the two dictionary candidate streams: CustomWords (tried first,
// in order) and the embedded corpus (delivered as Slabs for parallel scanning).
type Source struct {
	CustomWords []string
	maxLength   int
}

// New filters customWords to maxLength (the length cap applies to every dictionary
// candidate, not only corpus lines) and binds the embedded corpus.
func New(customWords []string, maxLength int) *Source {
	filtered := make([]string, 0, len(customWords))
	for _, w := range customWords {
		if len(w) > 0 && len(w) <= maxLength {
			filtered = append(filtered, w)
		}
	}
	return &Source{CustomWords: filtered, maxLength: maxLength}
}

// Slabs splits the embedded corpus into SlabSize-byte chunks, each extended to the
// next newline so no line is split across a slab boundary.
func (s *Source) Slabs() [][]byte {
	var slabs [][]byte
	data := embeddedCorpus
	for len(data) > 0 {
		end := SlabSize
		if end >= len(data) {
			end = len(data)
		} else if idx := bytes.IndexByte(data[end:], '\n'); idx >= 0 {
			end += idx + 1
		} else {
			end = len(data)
		}
		slabs = append(slabs, data[:end])
		data = data[end:]
	}
	return slabs
}

// EachLine splits a slab on LF boundaries, trimming a preceding CR, skipping empty
// lines and any line longer than the configured max length, and calls yield for
// each surviving candidate. yield returning false stops iteration early (e.g. once
// a worker finds a witness).
func (s *Source) EachLine(slab []byte, yield func([]byte) bool) {
	for _, line := range bytes.Split(slab, []byte{'\n'}) {
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		if len(line) == 0 || len(line) > s.maxLength {
			continue
		}
		if !yield(line) {
			return
		}
	}
}

// CorpusLineCount returns the number of embedded-corpus lines that survive the
// empty-line and max-length filters, for the estimator.
func (s *Source) CorpusLineCount() int {
	n := 0
	s.EachLine(embeddedCorpus, func([]byte) bool {
		n++
		return true
	})
	return n
}
