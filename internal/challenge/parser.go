// Package challenge turns the game documents into challenge records and judges answers against them.
//
// A challenge document is plain text with markdown decoration. Every line matching the heading grammar opens a
// challenge block that runs until the next heading or the end of the document:
//
//	### 🎂 DESAFIO 1 — Nome do Desafio
//	Descrição da prova.
//	**Resposta:** ABC123
//
// A heading is the word DESAFIO (any case), one or more digits and a dash (em dash, en dash or hyphen). Only
// decoration such as #, emoji, spaces or ** may come before DESAFIO, so prose mentioning another challenge stays in
// the body. In an answer key the line starting with **Resposta:** holds the
// canonical answer and is not part of the description.
package challenge

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/myrjola/jigsawroom/internal/textfile"
	"github.com/myrjola/jigsawroom/internal/textnorm"
)

const answerMarker = "**Resposta:**"

var headingPattern = regexp.MustCompile(`(?i)^[^\p{L}\p{N}]*\bDESAFIO\s+(\d+)\s*[—–-]\s*(.*)$`)

// IsHeading reports whether line opens a challenge block.
func IsHeading(line string) bool {
	return headingPattern.MatchString(strings.TrimSpace(line))
}

// ParseChallenges parses a document without answers. Every line of a block, including any answer marker, is part
// of the description. An empty document or one without headings gives no records.
func ParseChallenges(text string) []Record {
	return newAnswerKey(scan(text, false)).Records()
}

// ParseAnswerKey parses a document whose blocks may carry an answer marker line.
func ParseAnswerKey(text string) AnswerKey {
	return newAnswerKey(scan(text, true))
}

// LoadAnswerKey reads and parses the answer key at path. A missing or unreadable file gives an empty key, which
// callers treat as "no answer key loaded".
func LoadAnswerKey(path string) AnswerKey {
	return ParseAnswerKey(textfile.ReadOrEmpty(path))
}

type block struct {
	record Record
	lines  []string
}

func (b *block) finish() Record {
	lines := b.lines
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	r := b.record
	r.Description = strings.Join(lines, "\n")
	return r
}

// scan returns the blocks in document order, duplicates included.
func scan(text string, withAnswers bool) []Record {
	var (
		records []Record
		current *block
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
			if current != nil {
				records = append(records, current.finish())
			}
			current = &block{
				record: Record{
					Title:       trimmed,
					Key:         textnorm.TitleKey(trimmed),
					Number:      m[1],
					Name:        strings.TrimSpace(m[2]),
					Description: "",
					Answer:      "",
				},
				lines: nil,
			}
			continue
		}
		if current == nil {
			// Preamble before the first heading.
			continue
		}
		if withAnswers && strings.HasPrefix(trimmed, answerMarker) {
			current.record.Answer = strings.TrimFunc(strings.TrimPrefix(trimmed, answerMarker), func(r rune) bool {
				return r == '*' || unicode.IsSpace(r)
			})
			continue
		}
		current.lines = append(current.lines, line)
	}
	if current != nil {
		records = append(records, current.finish())
	}
	return records
}
