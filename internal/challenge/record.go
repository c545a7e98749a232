package challenge

import (
	"github.com/myrjola/jigsawroom/internal/textnorm"
)

// Record is one parsed challenge block.
type Record struct {
	// Title is the trimmed heading line, e.g. "### 🎂 DESAFIO 1 — Nome do Desafio".
	Title string
	// Key is the lookup key derived from Title with [textnorm.TitleKey].
	Key string
	// Number is the challenge number as written in the heading.
	Number string
	// Name is the heading text after the dash.
	Name string
	// Description is the block body with surrounding blank lines removed.
	Description string
	// Answer is the canonical answer, empty when the block has none.
	Answer string
}

// HasAnswer reports whether the record carries a canonical answer.
func (r Record) HasAnswer() bool {
	return r.Answer != ""
}

// AnswerKey indexes records by key while keeping document order. The zero value is an empty key.
//
// When two headings share a key the later block replaces the earlier one and keeps its position.
type AnswerKey struct {
	records []Record
	index   map[string]int
}

func newAnswerKey(records []Record) AnswerKey {
	k := AnswerKey{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		if i, ok := k.index[r.Key]; ok {
			k.records[i] = r
			continue
		}
		k.index[r.Key] = len(k.records)
		k.records = append(k.records, r)
	}
	return k
}

// Lookup finds the record for a title or key. The argument is normalized with [textnorm.TitleKey] so display
// titles with different decoration resolve to the same record.
func (k AnswerKey) Lookup(title string) (Record, bool) {
	i, ok := k.index[textnorm.TitleKey(title)]
	if !ok {
		return Record{}, false //nolint:exhaustruct // zero value
	}
	return k.records[i], true
}

// Records returns the records in document order.
func (k AnswerKey) Records() []Record {
	out := make([]Record, len(k.records))
	copy(out, k.records)
	return out
}

// Len returns the number of distinct challenges.
func (k AnswerKey) Len() int {
	return len(k.records)
}

// Verify judges submitted against the canonical answer of the challenge titled title. An unknown challenge
// yields [VerdictNoKey] just like a challenge without answer.
func (k AnswerKey) Verify(title, submitted string) Verdict {
	r, _ := k.Lookup(title)
	return Verify(submitted, r.Answer)
}
