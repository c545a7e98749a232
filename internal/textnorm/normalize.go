// Package textnorm holds the two normalizations used by the challenge engine. They are deliberately
// different: answers lose all whitespace and case, title keys keep case and single spaces so a challenge
// can still be found by its display title.
package textnorm

import (
	"regexp"
	"strings"
)

var challengeToken = regexp.MustCompile(`(?i)desafio`)

// Answer removes every whitespace character, Unicode spaces included, and lower-cases s. It is total and
// idempotent.
func Answer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// TitleKey derives the lookup key of a challenge heading.
//
// The leading run of '#' is stripped, everything before the first case-insensitive "DESAFIO" is dropped,
// whitespace runs collapse to a single space and the result is trimmed. Case is preserved.
func TitleKey(title string) string {
	s := strings.TrimLeft(strings.TrimSpace(title), "#")
	if loc := challengeToken.FindStringIndex(s); loc != nil {
		s = s[loc[0]:]
	}
	return strings.Join(strings.Fields(s), " ")
}
