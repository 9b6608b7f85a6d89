package insight

import (
	"sort"

	"github.com/bqhou/unitai/catalog"
	"github.com/bqhou/unitai/internal/util"
)

const instructions = "You are a concise measurement expert. Always answer with JSON only."

var contextPrompt = util.MustTemplate("context", `Convert: {{num .Value}} {{.From}} to {{.To}}.

Output JSON with:
1. 'examples': Exactly 2 short, vivid real-world comparisons (e.g. "Height of a giraffe").
2. 'funFact': One fascinating fact about this scale/unit.

Keep it extremely concise and fast.`)

var lookupPrompt = util.MustTemplate("lookup", `Query: "{{.Query}}"

Task:
1. Estimate the value of the object in the query.
2. Map to the best UnitCategory and units from the list below.
3. Provide a 'explanation' that is a fascinating insight or specific detail about the object's measurement (e.g., "The Eiffel Tower grows ~15cm in summer").

Available Units:
{{range .Units}}{{.Name}}: [{{join ", " .IDs}}]
{{end}}
Return JSON.`)

type unitLine struct {
	Name string
	IDs  []string
}

// unitLines orders the available units by catalog order, then any unknown
// names alphabetically.
func unitLines(available map[string][]string) []unitLine {
	lines := make([]unitLine, 0, len(available))
	seen := make(map[string]bool, len(available))
	for _, c := range catalog.Categories() {
		if ids, ok := available[c.String()]; ok {
			lines = append(lines, unitLine{Name: c.String(), IDs: ids})
			seen[c.String()] = true
		}
	}
	var rest []string
	for name := range available {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		lines = append(lines, unitLine{Name: name, IDs: available[name]})
	}
	return lines
}

func renderContextPrompt(value float64, from, to string) (string, error) {
	return util.Render(contextPrompt, map[string]any{"Value": value, "From": from, "To": to})
}

func renderLookupPrompt(query string, available map[string][]string) (string, error) {
	return util.Render(lookupPrompt, map[string]any{"Query": query, "Units": unitLines(available)})
}
