package challenge

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/tidwall/jsonc"
)

// AllFilter matches every category or difficulty.
const AllFilter = "All"

// Extra is an optional challenge from the extra catalog. It is also the shape of the challenge a player has
// selected, see [Oficina].
type Extra struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description"`
}

// Label is the text shown in the challenge picker.
func (e Extra) Label() string {
	return fmt.Sprintf("%s (%s)", e.Title, e.Difficulty)
}

// Oficina wraps the workshop document as a selectable challenge.
func Oficina(text string) Extra {
	return Extra{
		Title:       "Oficina",
		Category:    "oficina",
		Difficulty:  "n/a",
		Description: text,
	}
}

// Extras is the extra challenge catalog in file order.
type Extras []Extra

type extrasDocument struct {
	Challenges Extras `json:"challenges"`
}

// ParseExtras parses the catalog document {"challenges": [...]}. Comments and trailing commas are accepted. An
// empty document is an empty catalog.
func ParseExtras(text string) (Extras, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var doc extrasDocument
	if err := json.Unmarshal(jsonc.ToJSON([]byte(text)), &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal challenge catalog")
	}
	return doc.Challenges, nil
}

// Filter keeps the challenges matching category and difficulty. An empty value or [AllFilter] matches anything.
func (e Extras) Filter(category, difficulty string) Extras {
	var out Extras
	for _, c := range e {
		if !matches(category, c.Category) || !matches(difficulty, c.Difficulty) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matches(filter, value string) bool {
	return filter == "" || filter == AllFilter || filter == value
}

// Find returns the challenge whose title or label is name.
func (e Extras) Find(name string) (Extra, bool) {
	for _, c := range e {
		if c.Title == name || c.Label() == name {
			return c, true
		}
	}
	return Extra{}, false //nolint:exhaustruct // zero value
}

// Categories lists the distinct categories sorted.
func (e Extras) Categories() []string {
	return distinct(e, func(c Extra) string { return c.Category })
}

// Difficulties lists the distinct difficulties sorted.
func (e Extras) Difficulties() []string {
	return distinct(e, func(c Extra) string { return c.Difficulty })
}

func distinct(e Extras, field func(Extra) string) []string {
	var out []string
	for _, c := range e {
		v := field(c)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
