package pageindex

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// tocItemsSchema validates the decoded table_of_contents array before it is
// converted to typed items. Page fields are loose on purpose: models return
// them as numbers, numeric strings, tag echoes, or null.
const tocItemsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title"],
    "properties": {
      "structure": {"type": ["string", "null"]},
      "title": {"type": "string", "minLength": 1},
      "page": {"type": ["integer", "string", "null"]},
      "physical_index": {"type": ["integer", "string", "null"]},
      "appear_start": {"type": ["string", "null"]}
    }
  }
}`

var tocItemsValidator = jsonschema.MustCompileString("toc_items.json", tocItemsSchema)

// validateTocItems checks a decoded table_of_contents value against the
// schema. The value must already be decoded JSON (a []any of objects).
func validateTocItems(v any) error {
	if err := tocItemsValidator.Validate(v); err != nil {
		return fmt.Errorf("table of contents failed validation: %w", err)
	}
	return nil
}
