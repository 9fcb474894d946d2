package ops

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordSchemaJSON describes one task record in an export file.
const recordSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type", "description"],
  "properties": {
    "type":        {"enum": ["todo", "deadline", "event"]},
    "description": {"type": "string", "pattern": "^[^\\r\\n]*\\S[^\\r\\n]*$"},
    "done":        {"type": "boolean"},
    "by":          {"type": "string", "pattern": "^[^\\r\\n]*\\S[^\\r\\n]*$"},
    "due":         {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}$"},
    "from":        {"type": "string", "pattern": "^[^\\r\\n]*\\S[^\\r\\n]*$"},
    "to":          {"type": "string", "pattern": "^[^\\r\\n]*\\S[^\\r\\n]*$"}
  },
  "allOf": [
    {
      "if":   {"properties": {"type": {"const": "deadline"}}},
      "then": {"anyOf": [{"required": ["by"]}, {"required": ["due"]}]}
    },
    {
      "if":   {"properties": {"type": {"const": "event"}}},
      "then": {"required": ["from", "to"]}
    }
  ]
}`

var recordSchema = jsonschema.MustCompileString("tally-record.json", recordSchemaJSON)

// validateRecord checks a decoded JSON value against recordSchema and
// flattens the failures into one message.
func validateRecord(v any) error {
	err := recordSchema.Validate(v)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	var msgs []string
	collectSchemaErrors(ve, &msgs)
	if len(msgs) == 0 {
		return err
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func collectSchemaErrors(err *jsonschema.ValidationError, msgs *[]string) {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*msgs = append(*msgs, fmt.Sprintf("%s: %s", loc, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, msgs)
	}
}
