// Package similarity provides the string comparison metrics used by the
// tiered matching engine
package similarity

import (
	"strings"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Scorer provides character and word level similarity metrics
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Ratio calculates the Ratcliff/Obershelp similarity between two strings:
// twice the number of characters in matching blocks divided by the total
// length of both strings. Returns a value between 0.0 and 1.0; two empty
// strings are considered identical.
func (s *Scorer) Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	matched := matchedChars(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

// PositionalWordScore compares two multi-word names by aligning their leading
// words. Both names are cleaned and tokenized; each needs at least two words.
// Only the first three words of each side are considered, and a word may only
// pair with the word at the same position or one position away. A pair whose
// character similarity reaches floor counts as a strong match; the score is
// the mean of the first two strong matches scaled to 0-100, or 0 when fewer
// than two are found.
func (s *Scorer) PositionalWordScore(name1, name2 string, floor float64) float64 {
	words1 := Tokens(name1)
	words2 := Tokens(name2)

	if len(words1) < 2 || len(words2) < 2 {
		return 0.0
	}

	limit1 := min(len(words1), 3)
	limit2 := min(len(words2), 3)

	matches := 0
	sum := 0.0

	for i := 0; i < limit1; i++ {
		for j := 0; j < limit2; j++ {
			if i-j > 1 || j-i > 1 {
				continue
			}

			sim := s.Ratio(words1[i], words2[j])
			if sim >= floor {
				matches++
				sum += sim
				if matches == 2 {
					return sum / 2.0 * 100.0
				}
			}
		}
	}

	return 0.0
}

// Tokens cleans a name and splits it into words
func Tokens(name string) []string {
	return strings.Fields(normalizers.CleanName(name))
}

// matchedChars sums the sizes of all matching blocks: the longest common
// block, then recursively the pieces to its left and right. Mirrors the
// Ratcliff/Obershelp recursion so Ratio is deterministic for equal-length
// candidate blocks (lowest index wins).
func matchedChars(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	i, j, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}

	return size +
		matchedChars(a[:i], b[:j]) +
		matchedChars(a[i+size:], b[j+size:])
}

// longestCommonBlock finds the longest run of runes common to a and b,
// returning its start in each and its length. Uses the rolling j2len table:
// j2len[j] is the length of the common run ending at a[i], b[j].
func longestCommonBlock(a, b []rune) (int, int, int) {
	bestI, bestJ, bestSize := 0, 0, 0

	j2len := make(map[int]int)
	for i := 0; i < len(a); i++ {
		newJ2len := make(map[int]int)
		for j := 0; j < len(b); j++ {
			if a[i] != b[j] {
				continue
			}

			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				bestI = i - k + 1
				bestJ = j - k + 1
				bestSize = k
			}
		}
		j2len = newJ2len
	}

	return bestI, bestJ, bestSize
}
