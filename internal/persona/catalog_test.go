package persona_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/myrjola/jigsawroom/internal/persona"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestLoadCatalog(t *testing.T) {
	root := writeTree(t, map[string]string{
		"gustavo/background_gustavo.txt": "  Engenheiro sênior.\n",
		"gustavo/background.txt":         "não deve ser usado",
		"gustavo/descricao.txt":          "Lógico e metódico.",
		"gustavo/dicas_b.txt":            "segunda dica",
		"gustavo/dicas_a.txt":            "primeira dica",
		"gustavo/notas.txt":              "ignorado",
		"maya/descricao_maya.txt":        "Psicóloga.",
		"maya/oficina_sem_respostas.txt": "### DESAFIO 1 — Teste\nDescrição da prova.",
		"zeta/oficina_sem_respostas.txt": "### DESAFIO 9 — Outra oficina",
		"README.txt":                     "not a persona",
	})

	c := persona.LoadCatalog(root)

	personas := c.Personas()
	require.Len(t, personas, 3)
	assert.Equal(t, "gustavo", personas[0].ID)
	assert.Equal(t, "maya", personas[1].ID)
	assert.Equal(t, "zeta", personas[2].ID)

	gustavo, ok := c.Get("gustavo")
	require.True(t, ok)
	assert.Equal(t, persona.Persona{
		ID:          "gustavo",
		Background:  "Engenheiro sênior.",
		Description: "Lógico e metódico.",
		Hints:       "primeira dica",
	}, gustavo)

	maya, ok := c.Get("maya")
	require.True(t, ok)
	assert.Equal(t, "Psicóloga.", maya.Description)
	assert.Empty(t, maya.Background)
	assert.Empty(t, maya.Hints)

	zeta, ok := c.Get("zeta")
	require.True(t, ok)
	assert.True(t, zeta.IsEmpty())

	_, ok = c.Get("dra_caroline")
	assert.False(t, ok)

	assert.Equal(t, "### DESAFIO 1 — Teste\nDescrição da prova.", c.Oficina)
	challenges := c.Challenges()
	require.Len(t, challenges, 1)
	assert.Equal(t, "Teste", challenges[0].Name)
}

func TestLoadCatalog_fallbackPattern(t *testing.T) {
	root := writeTree(t, map[string]string{
		"maya/backgroundMaya.txt": "sem sublinhado",
		"maya/dicas.txt":          "dica",
	})
	maya, ok := persona.LoadCatalog(root).Get("maya")
	require.True(t, ok)
	assert.Equal(t, "sem sublinhado", maya.Background)
	assert.Equal(t, "dica", maya.Hints)
}

func TestLoadCatalog_emptyOficinaIsSkipped(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/oficina_sem_respostas.txt": " \n ",
		"b/oficina_sem_respostas.txt": "conteúdo",
	})
	assert.Equal(t, "conteúdo", persona.LoadCatalog(root).Oficina)
}

func TestLoadCatalog_missingRoot(t *testing.T) {
	c := persona.LoadCatalog(filepath.Join(t.TempDir(), "agents_description"))
	assert.Empty(t, c.Personas())
	assert.Empty(t, c.Oficina)
	assert.Empty(t, c.Challenges())
}
