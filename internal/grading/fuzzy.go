package grading

import (
	"strings"
	"unicode"
)

// FuzzyGrader is an optional stricter-input, looser-match grader: it casefolds
// and strips punctuation from both sides and accepts the submission when the
// normalized solution line appears in it, or is within MaxDistance edits of
// some window of it. Selected via config; never the default.
type FuzzyGrader struct {
	MaxDistance int
}

// NewFuzzyGrader creates a fuzzy grader tolerating up to maxDistance edits.
func NewFuzzyGrader(maxDistance int) FuzzyGrader {
	return FuzzyGrader{MaxDistance: maxDistance}
}

func (g FuzzyGrader) Evaluate(submitted, expected string) Result {
	want := normalize(strings.TrimSpace(FirstLine(expected)))
	got := normalize(submitted)
	if want == "" || got == "" {
		return Result{Correct: false}
	}
	if strings.Contains(got, want) {
		return Result{Correct: true}
	}
	// Slide a window of the solution's length over the submission.
	wr := []rune(want)
	gr := []rune(got)
	if len(gr) < len(wr) {
		return Result{Correct: levenshtein(got, want) <= g.MaxDistance}
	}
	for i := 0; i+len(wr) <= len(gr); i++ {
		if levenshtein(string(gr[i:i+len(wr)]), want) <= g.MaxDistance {
			return Result{Correct: true}
		}
	}
	return Result{Correct: false}
}

// normalize lowercases s, drops punctuation, and collapses runs of
// whitespace to single spaces. Letters, digits, and symbols like = or +
// pass through, so code tokens survive.
func normalize(s string) string {
	out := make([]rune, 0, len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsPunct(r):
			// dropped
		default:
			if pendingSpace && len(out) > 0 {
				out = append(out, ' ')
			}
			pendingSpace = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

// levenshtein returns the edit distance between a and b, counting
// insertions, deletions, and substitutions at unit cost. Single-row DP.
func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}
	row := make([]int, len(br)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(br); j++ {
			sub := diag
			if ar[i-1] != br[j-1] {
				sub++
			}
			diag = row[j]
			row[j] = min(row[j]+1, row[j-1]+1, sub)
		}
	}
	return row[len(br)]
}
