// Package estimate computes the combinatorial estimator: the exact count of
// candidates the brute-force phase would enumerate, plus dictionary sizes.
package estimate

import "math/big"

// BruteForce returns sum_{L=minLength..maxLength} alphabetSize^L as an
// arbitrary-precision integer. Returns 0 if alphabetSize is 0.
func BruteForce(alphabetSize, minLength, maxLength int) *big.Int {
	total := new(big.Int)
	if alphabetSize <= 0 {
		return total
	}
	base := big.NewInt(int64(alphabetSize))
	tmp := new(big.Int)
	for l := minLength; l <= maxLength; l++ {
		tmp.Exp(base, big.NewInt(int64(l)), nil)
		total.Add(total, tmp)
	}
	return total
}

// Dictionary returns the dictionary-phase candidate count: the custom word count
// plus the embedded corpus line count.
func Dictionary(customWordCount, corpusLineCount int) *big.Int {
	return big.NewInt(int64(customWordCount) + int64(corpusLineCount))
}

// Total combines the brute-force and dictionary estimates, as zipcrack.Estimate
// does for a full Config.
func Total(alphabetSize, minLength, maxLength, customWordCount, corpusLineCount int, useDictionary bool) *big.Int {
	total := BruteForce(alphabetSize, minLength, maxLength)
	if useDictionary {
		total.Add(total, Dictionary(customWordCount, corpusLineCount))
	}
	return total
}
