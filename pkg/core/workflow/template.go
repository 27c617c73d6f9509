package workflow

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"grantintel/pkg/models"
)

// templateData is the root object a step's InputTemplate is rendered
// against: prior step outputs keyed by step ID (each decoded into a generic
// interface{} so fields render with dot-notation, e.g. {{.Steps.fetch.ein}})
// and the run's initial context under .Input.
type templateData struct {
	Steps map[string]interface{}
	Input map[string]interface{}
}

// parseStepTemplate parses a step's input template at workflow-start time,
// so a malformed template (syntax error) fails the run immediately as a
// definition problem rather than surfacing per-step at execution time.
func parseStepTemplate(stepID, src string) (*template.Template, error) {
	t, err := template.New(stepID).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("workflow step %s: invalid input template: %w", stepID, err)
	}
	return t, nil
}

// renderStepInput executes a parsed template against the current run data.
// An unresolvable reference (a key absent from .Steps or .Input) surfaces as
// the "missingkey=error" execution error, classified here as
// models.KindMissingInput — permanent, since re-rendering the same template
// against the same unresolved reference can never succeed.
func renderStepInput(t *template.Template, data templateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		if strings.Contains(err.Error(), "map has no entry for key") {
			return nil, models.NewError(models.KindMissingInput,
				fmt.Sprintf("step %s: input template referenced an unresolved value", t.Name()), err)
		}
		return nil, models.NewError(models.KindMissingInput,
			fmt.Sprintf("step %s: input template execution failed", t.Name()), err)
	}
	return buf.Bytes(), nil
}
