package challenge

import (
	"strings"

	"github.com/myrjola/jigsawroom/internal/textnorm"
)

// Verdict is the outcome of judging a submission.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
	// VerdictNoKey means no canonical answer is known, which is not the same as a wrong answer.
	VerdictNoKey Verdict = "no_key"
)

// Verify compares submitted with canonical after [textnorm.Answer] normalization.
//
// A submission is correct when it equals the canonical answer or contains it, so a reply that embeds the answer
// in a sentence still counts.
func Verify(submitted, canonical string) Verdict {
	b := textnorm.Answer(canonical)
	if b == "" {
		return VerdictNoKey
	}
	a := textnorm.Answer(submitted)
	if a == b || strings.Contains(a, b) {
		return VerdictCorrect
	}
	return VerdictIncorrect
}
