// Package grading evaluates submitted challenge code against an expected
// solution. Grading strategy is a pluggable capability; the default matcher
// intentionally checks only the first line of the stored solution.
package grading

import "strings"

// Result is the outcome of evaluating a submission.
type Result struct {
	Correct bool `json:"correct"`
}

// Grader decides whether submitted code satisfies an expected solution.
type Grader interface {
	Evaluate(submitted, expected string) Result
}

// FirstLineGrader is the default grader: a submission is correct when it
// contains the trimmed first line of the expected solution as a substring.
// There is no partial credit and submitted code is never executed.
type FirstLineGrader struct{}

// NewFirstLineGrader creates the default grader.
func NewFirstLineGrader() FirstLineGrader {
	return FirstLineGrader{}
}

// Evaluate never errors; malformed input (empty submission, empty solution)
// is simply judged incorrect.
func (FirstLineGrader) Evaluate(submitted, expected string) Result {
	want := strings.TrimSpace(FirstLine(expected))
	if want == "" || submitted == "" {
		return Result{Correct: false}
	}
	return Result{Correct: strings.Contains(submitted, want)}
}

// FirstLine returns everything up to the first newline of s.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
