package nautilus

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// #region schemas
const initialSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["n_iterations", "preference_method", "preference_info"],
  "properties": {
    "n_iterations": {"type": "integer", "minimum": 1},
    "preference_method": {"enum": [1, 2]},
    "preference_info": {"type": "array", "items": {"type": "number"}},
    "step_back": false,
    "short_step": false,
    "use_previous_preference": false,
    "stop": false
  }
}`

const iterationSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "n_iterations": {"type": "integer", "minimum": 1},
    "step_back": {"type": "boolean"},
    "short_step": {"type": "boolean"},
    "use_previous_preference": {"type": "boolean"},
    "preference_method": {"enum": [1, 2]},
    "preference_info": {"type": "array", "items": {"type": "number"}},
    "stop": {"type": "boolean"}
  }
}`

var (
	initialSchema   = mustCompile("initial", initialSchemaJSON)
	iterationSchema = mustCompile("iteration", iterationSchemaJSON)
)

func mustCompile(name, src string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://nautilus.schemas.local/%s-response.schema.json", name)
	if err := c.AddResource(url, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("load %s schema: %v", name, err))
	}
	return c.MustCompile(url)
}

// #endregion schemas

// #region schema-errors
// schemaError turns the deepest schema violation into a ValidationError
// naming the offending field.
func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &ValidationError{Reason: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if i := strings.Index(field, "/"); i >= 0 {
		field = field[:i]
	}
	if field == "" {
		field = quotedName(ve.Message)
	}
	return &ValidationError{Field: field, Reason: ve.Message}
}

// quotedName extracts the first 'name' from a schema message such as
// "missing properties: 'n_iterations'".
func quotedName(msg string) string {
	start := strings.IndexByte(msg, '\'')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(msg[start+1:], '\'')
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// #endregion schema-errors
