package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxBodyBytes = 64 << 10

var commandSchema = jsonschema.MustCompileString("command.schema.json", `{
	"type": "object",
	"properties": {
		"player": {"type": "string", "minLength": 1},
		"cell_id": {"type": "string"},
		"price": {"type": "integer", "minimum": 0}
	},
	"additionalProperties": false
}`)

var cellSchema = jsonschema.MustCompileString("cell.schema.json", `{
	"type": "object",
	"properties": {
		"cell_id": {"type": "string", "minLength": 1},
		"props": {"type": "object"}
	},
	"required": ["cell_id", "props"]
}`)

// decodeValidated reads a JSON body, checks it against schema, and decodes
// it into dst. An empty body counts as {}.
func decodeValidated(body io.Reader, schema *jsonschema.Schema, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return json.Unmarshal(raw, dst)
}
