package interpreter

import (
	"strings"
	"text/template"

	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
)

var promptTemplate = template.Must(template.New("interpret").Parse(`Act as an Anesthesia Assistant. Analyze this command: "{{.Command}}"

Rules:
1. Extract: Item Name, Quantity (number), Unit.
2. Classify into ONE category: [{{.Categories}}].
3. Return JSON ONLY, a single object and nothing else, with keys "item", "qty", "unit", "cat". Example: {"item": "Fentanyl", "qty": 50, "unit": "mcg", "cat": "Narcotic"}
`))

type promptData struct {
	Command    string
	Categories string
}

// BuildPrompt renders the fixed instruction template around command.
func BuildPrompt(command string) (string, error) {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = c.String()
	}

	var b strings.Builder
	err := promptTemplate.Execute(&b, promptData{
		Command:    command,
		Categories: strings.Join(names, ", "),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
