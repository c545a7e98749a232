package textnorm_test

import (
	"testing"

	"github.com/myrjola/jigsawroom/internal/textnorm"
	"github.com/stretchr/testify/require"
)

func TestAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \t\n ", want: ""},
		{name: "inner spaces removed", in: "1979 0312", want: "19790312"},
		{name: "newlines removed", in: "ABC\n123", want: "abc123"},
		{name: "lower-cased", in: "  Olá Mundo ", want: "olámundo"},
		{name: "punctuation kept", in: " 1-3-5 ", want: "1-3-5"},
		{name: "unicode whitespace", in: "a\u00a0b\u2003c", want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textnorm.Answer(tt.in)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, textnorm.Answer(got), "normalization must be idempotent")
		})
	}
}

func TestTitleKey(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "markdown heading", title: "### DESAFIO 1 — Teste", want: "DESAFIO 1 — Teste"},
		{name: "emoji before token", title: "### 🎂 DESAFIO 1 — Nome do   Desafio", want: "DESAFIO 1 — Nome do Desafio"},
		{name: "case preserved", title: "## Desafio 2 - Outro", want: "Desafio 2 - Outro"},
		{name: "tabs collapse", title: "DESAFIO\t3\t—\tCofre  ", want: "DESAFIO 3 — Cofre"},
		{name: "no token", title: "#  Introdução   geral", want: "Introdução geral"},
		{name: "empty", title: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, textnorm.TitleKey(tt.title))
		})
	}
}

func TestTitleKeyMatchesDisplayVariants(t *testing.T) {
	require.Equal(t,
		textnorm.TitleKey("### 🎂 DESAFIO 1 — Bolo"),
		textnorm.TitleKey("DESAFIO  1 —  Bolo"),
	)
}
