// Package evaluation scores a hypothesis transcript against a reference.
package evaluation

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// Scores holds the error rates of one comparison. Both are nil when the
// reference is empty.
type Scores struct {
	WER *float64 `json:"wer"`
	CER *float64 `json:"cer"`
}

// Evaluate computes word and character error rates. Rates can exceed 1 when the
// hypothesis holds many insertions.
func Evaluate(reference, hypothesis string) Scores {
	ref := Normalize(reference)
	hyp := Normalize(hypothesis)
	if ref == "" {
		return Scores{}
	}

	refWords := strings.Fields(ref)
	hypWords := strings.Fields(hyp)
	wer := float64(distance(refWords, hypWords)) / float64(len(refWords))

	refChars := []rune(strings.ReplaceAll(ref, " ", ""))
	hypChars := []rune(strings.ReplaceAll(hyp, " ", ""))
	cer := float64(distance(refChars, hypChars)) / float64(len(refChars))

	return Scores{WER: &wer, CER: &cer}
}

// Normalize lower-cases text, strips punctuation and collapses whitespace.
// Apostrophes inside words are kept so "don't" stays one token.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'':
			b.WriteRune(r)
		case unicode.IsSpace(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			b.WriteRune(' ')
		}
	}

	words := lo.Map(strings.Fields(b.String()), func(w string, _ int) string {
		return strings.Trim(w, "'")
	})
	return strings.Join(lo.Compact(words), " ")
}

// distance is the Levenshtein edit distance over any comparable tokens,
// using two rolling rows.
func distance[T comparable](a, b []T) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
