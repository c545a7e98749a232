// Package persona loads the character descriptions of the agents and the workshop challenge document from the
// persona tree:
//
//	agents_description/
//	  gustavo/
//	    background_gustavo.txt
//	    descricao_gustavo.txt
//	    dicas_gustavo.txt
//	    oficina_sem_respostas.txt
//	  maya/
//	    ...
package persona

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/myrjola/jigsawroom/internal/textfile"
)

// OficinaFileName is the workshop challenge document shared by the personas.
const OficinaFileName = "oficina_sem_respostas.txt"

var (
	backgroundPatterns  = []string{"background_*.txt", "background*.txt"}
	descriptionPatterns = []string{"descricao_*.txt", "descricao*.txt"}
	hintPatterns        = []string{"dicas_*.txt", "dicas*.txt"}
)

// Persona holds the text fragments describing one character. Missing fragments are empty.
type Persona struct {
	// ID is the persona directory name, e.g. "gustavo".
	ID          string
	Background  string
	Description string
	Hints       string
}

// IsEmpty reports whether the persona has no text at all.
func (p Persona) IsEmpty() bool {
	return p.Background == "" && p.Description == "" && p.Hints == ""
}

// Catalog is the loaded persona tree.
type Catalog struct {
	// Oficina is the text of the first non-empty workshop document, in directory order.
	Oficina  string
	personas []Persona
}

// LoadCatalog reads every immediate subdirectory of root as a persona. A missing or unreadable root gives an
// empty catalog.
func LoadCatalog(root string) Catalog {
	var c Catalog
	entries, err := os.ReadDir(root)
	if err != nil {
		return c
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		names := fileNames(dir)
		if c.Oficina == "" && slices.Contains(names, OficinaFileName) {
			c.Oficina = textfile.ReadOrEmpty(filepath.Join(dir, OficinaFileName))
		}
		c.personas = append(c.personas, Persona{
			ID:          entry.Name(),
			Background:  readFirstMatch(dir, names, backgroundPatterns),
			Description: readFirstMatch(dir, names, descriptionPatterns),
			Hints:       readFirstMatch(dir, names, hintPatterns),
		})
	}
	return c
}

// fileNames lists the regular file names in dir, sorted.
func fileNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names
}

// readFirstMatch reads the first name matching the earliest pattern that matches anything.
func readFirstMatch(dir string, names []string, patterns []string) string {
	for _, pattern := range patterns {
		for _, name := range names {
			if ok, _ := filepath.Match(pattern, name); ok {
				return textfile.ReadOrEmpty(filepath.Join(dir, name))
			}
		}
	}
	return ""
}

// Get returns the persona with the given directory name.
func (c Catalog) Get(id string) (Persona, bool) {
	for _, p := range c.personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false //nolint:exhaustruct // zero value
}

// Personas returns the personas sorted by ID.
func (c Catalog) Personas() []Persona {
	return slices.Clone(c.personas)
}

// Challenges parses the workshop document into challenge records.
func (c Catalog) Challenges() []challenge.Record {
	return challenge.ParseChallenges(c.Oficina)
}
