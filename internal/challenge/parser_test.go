package challenge_test

import (
	"path/filepath"
	"testing"

	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const answerKeyDoc = `### DESAFIO 1 — Teste
Descrição da prova.
**Resposta:** ABC123
### DESAFIO 2 — Outro
Outra descrição.`

func TestParseAnswerKey(t *testing.T) {
	key := challenge.ParseAnswerKey(answerKeyDoc)
	require.Equal(t, 2, key.Len())

	records := key.Records()
	assert.Equal(t, challenge.Record{
		Title:       "### DESAFIO 1 — Teste",
		Key:         "DESAFIO 1 — Teste",
		Number:      "1",
		Name:        "Teste",
		Description: "Descrição da prova.",
		Answer:      "ABC123",
	}, records[0])
	assert.Equal(t, challenge.Record{
		Title:       "### DESAFIO 2 — Outro",
		Key:         "DESAFIO 2 — Outro",
		Number:      "2",
		Name:        "Outro",
		Description: "Outra descrição.",
		Answer:      "",
	}, records[1])
	assert.False(t, records[1].HasAnswer())

	tests := []struct {
		name      string
		title     string
		submitted string
		want      challenge.Verdict
	}{
		{name: "lowercase", title: "### DESAFIO 1 — Teste", submitted: "abc123", want: challenge.VerdictCorrect},
		{name: "spaced out", title: "### DESAFIO 1 — Teste", submitted: " a b c 1 2 3 ", want: challenge.VerdictCorrect},
		{name: "wrong", title: "### DESAFIO 1 — Teste", submitted: "xyz", want: challenge.VerdictIncorrect},
		{name: "no answer", title: "### DESAFIO 2 — Outro", submitted: "anything", want: challenge.VerdictNoKey},
		{name: "unknown challenge", title: "DESAFIO 9 — Nada", submitted: "abc123", want: challenge.VerdictNoKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, key.Verify(tt.title, tt.submitted))
		})
	}
}

func TestParseAnswerKey_headings(t *testing.T) {
	doc := `Preamble text that belongs to no challenge.
**Resposta:** ignored

## 🎂 DESAFIO 7 — Bolo de Aniversário

Corte o bolo.

**Resposta:** **Fatia**

#### desafio 8 - Hífen
Linha um
DESAFIO 9 sem traço
`
	key := challenge.ParseAnswerKey(doc)
	require.Equal(t, 2, key.Len())

	cake, ok := key.Lookup("DESAFIO 7 — Bolo de Aniversário")
	require.True(t, ok, "decoration must not matter for lookup")
	assert.Equal(t, "## 🎂 DESAFIO 7 — Bolo de Aniversário", cake.Title)
	assert.Equal(t, "7", cake.Number)
	assert.Equal(t, "Bolo de Aniversário", cake.Name)
	assert.Equal(t, "Corte o bolo.", cake.Description)
	assert.Equal(t, "Fatia", cake.Answer)

	_, ok = key.Lookup("### 🎂   DESAFIO 7 —  Bolo de Aniversário")
	assert.True(t, ok)

	hyphen, ok := key.Lookup("desafio 8 - Hífen")
	require.True(t, ok)
	assert.Equal(t, "Hífen", hyphen.Name)
	assert.Equal(t, "Linha um\nDESAFIO 9 sem traço", hyphen.Description)
	assert.Empty(t, hyphen.Answer)
}

func TestParseAnswerKey_duplicates(t *testing.T) {
	doc := `### DESAFIO 1 — A
primeiro
**Resposta:** X
### DESAFIO 2 — B
**Resposta:** B
### DESAFIO 1 — A
segundo
**Resposta:** Y
`
	key := challenge.ParseAnswerKey(doc)
	require.Equal(t, 2, key.Len())
	records := key.Records()
	assert.Equal(t, "DESAFIO 1 — A", records[0].Key)
	assert.Equal(t, "segundo", records[0].Description)
	assert.Equal(t, "Y", records[0].Answer)
	assert.Equal(t, "DESAFIO 2 — B", records[1].Key)
	assert.Equal(t, challenge.VerdictCorrect, key.Verify("DESAFIO 1 — A", "y"))
	assert.Equal(t, challenge.VerdictIncorrect, key.Verify("DESAFIO 1 — A", "x"))
}

func TestParseAnswerKey_bodyMentionsOtherChallenge(t *testing.T) {
	doc := `### DESAFIO 1 — Cofre
Use o número obtido no DESAFIO 2 - Relógio para abrir.
**Resposta:** 42
### DESAFIO 2 — Relógio
Leia as horas.
**Resposta:** 7
`
	key := challenge.ParseAnswerKey(doc)
	require.Equal(t, 2, key.Len())

	cofre, ok := key.Lookup("DESAFIO 1 — Cofre")
	require.True(t, ok)
	assert.Equal(t, "42", cofre.Answer)
	assert.Equal(t, "Use o número obtido no DESAFIO 2 - Relógio para abrir.", cofre.Description)
	assert.Equal(t, challenge.VerdictCorrect, key.Verify("DESAFIO 1 — Cofre", "42"))

	relogio, ok := key.Lookup("DESAFIO 2 — Relógio")
	require.True(t, ok)
	assert.Equal(t, "7", relogio.Answer)
}

func TestParseAnswerKey_lastMarkerWins(t *testing.T) {
	key := challenge.ParseAnswerKey("DESAFIO 1 — A\n**Resposta:** primeira\n**Resposta:** segunda\n")
	r, ok := key.Lookup("DESAFIO 1 — A")
	require.True(t, ok)
	assert.Equal(t, "segunda", r.Answer)
	assert.Empty(t, r.Description)
}

func TestParseChallenges(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []challenge.Record
	}{
		{
			name: "empty document",
			text: "",
			want: []challenge.Record{},
		},
		{
			name: "no headings",
			text: "Just some text\nwithout challenges",
			want: []challenge.Record{},
		},
		{
			name: "answer marker stays in description",
			text: "### DESAFIO 1 — Teste\nDescrição da prova.\n**Resposta:** ABC123\n",
			want: []challenge.Record{{
				Title:       "### DESAFIO 1 — Teste",
				Key:         "DESAFIO 1 — Teste",
				Number:      "1",
				Name:        "Teste",
				Description: "Descrição da prova.\n**Resposta:** ABC123",
				Answer:      "",
			}},
		},
		{
			name: "blank lines around body are dropped",
			text: "### DESAFIO 3 – En dash\r\n\r\n\r\nLinha um\r\n\r\nLinha dois\r\n\r\n",
			want: []challenge.Record{{
				Title:       "### DESAFIO 3 – En dash",
				Key:         "DESAFIO 3 – En dash",
				Number:      "3",
				Name:        "En dash",
				Description: "Linha um\n\nLinha dois",
				Answer:      "",
			}},
		},
		{
			name: "heading without body",
			text: "DESAFIO 10 — Vazio",
			want: []challenge.Record{{
				Title:       "DESAFIO 10 — Vazio",
				Key:         "DESAFIO 10 — Vazio",
				Number:      "10",
				Name:        "Vazio",
				Description: "",
				Answer:      "",
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, challenge.ParseChallenges(tt.text))
		})
	}
}

func TestIsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{line: "### DESAFIO 1 — Teste", want: true},
		{line: "  🎂 desafio 12 -  Bolo", want: true},
		{line: "Desafio 2–Sem espaços", want: true},
		{line: "DESAFIO — sem número", want: false},
		{line: "DESAFIO 4 sem traço", want: false},
		{line: "SUPERDESAFIO 5 — Colado", want: false},
		{line: "**DESAFIO 6 — Negrito**", want: true},
		{line: "Use o número obtido no DESAFIO 2 - Relógio", want: false},
		{line: "1. DESAFIO 3 — Numerado", want: false},
		{line: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, challenge.IsHeading(tt.line))
		})
	}
}

func TestLoadAnswerKey_missingFile(t *testing.T) {
	key := challenge.LoadAnswerKey(filepath.Join(t.TempDir(), "respostas.txt"))
	assert.Equal(t, 0, key.Len())
	assert.Empty(t, key.Records())
	assert.Equal(t, challenge.VerdictNoKey, key.Verify("DESAFIO 1 — Teste", "abc"))
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		canonical string
		want      challenge.Verdict
	}{
		{name: "exact", submitted: "ABC123", canonical: "ABC123", want: challenge.VerdictCorrect},
		{name: "case and spaces", submitted: " a B c 1 2 3 ", canonical: "ABC123", want: challenge.VerdictCorrect},
		{name: "embedded in sentence", submitted: "A resposta é abc123!", canonical: "ABC123", want: challenge.VerdictCorrect},
		{name: "unicode whitespace", submitted: "abc\u00a0123", canonical: "ABC 123", want: challenge.VerdictCorrect},
		{name: "wrong", submitted: "xyz", canonical: "ABC123", want: challenge.VerdictIncorrect},
		{name: "partial is not enough", submitted: "abc", canonical: "ABC123", want: challenge.VerdictIncorrect},
		{name: "empty submission", submitted: "", canonical: "ABC123", want: challenge.VerdictIncorrect},
		{name: "no canonical", submitted: "anything", canonical: "", want: challenge.VerdictNoKey},
		{name: "blank canonical", submitted: "anything", canonical: " \t ", want: challenge.VerdictNoKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, challenge.Verify(tt.submitted, tt.canonical))
		})
	}
}
