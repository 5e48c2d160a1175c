// Package capability declares, per generation capability, the exact shape
// the model must return. Declarations are static configuration: they are
// built once at package init and only ever read afterwards, so concurrent
// handler goroutines can share them without locking.
package capability

import "fmt"

// Mode selects the tool configuration the generation client sends with the
// prompt.
type Mode string

const (
	// ModeStructured offers the capability's function declaration and
	// expects exactly one matching tool call back.
	ModeStructured Mode = "structured"

	// ModeGrounded enables web search; the result is free text plus
	// grounding citations.
	ModeGrounded Mode = "grounded"

	// ModeGroundedStructured combines live search with a strict output
	// shape (battlecard, lead finder).
	ModeGroundedStructured Mode = "grounded_structured"

	// ModeMedia requests inline image output instead of text or tool calls.
	ModeMedia Mode = "media"
)

// Parameter describes one field of a declaration's output schema. Array
// fields set Items; object fields set Fields.
type Parameter struct {
	Name        string
	Type        string // string, number, boolean, object, array
	Description string
	Required    bool
	Enum        []string
	Items       *Parameter
	Fields      []Parameter
}

// Declaration is a capability's output contract: the function name the
// model must call, the parameter schema its arguments must satisfy, and
// the error message surfaced when it fails to do so.
type Declaration struct {
	// ID names the capability ("deal_score", "battlecard", ...).
	ID string

	// Tool is the function name offered to the model. Empty for grounded
	// and media capabilities, which have no structured schema.
	Tool string

	// Description steers the model toward calling the function.
	Description string

	// Parameters is the argument schema of the expected tool call.
	Parameters []Parameter

	// Mode selects the tool configuration for the generation client.
	Mode Mode

	// ThinkingBudget, when positive, grants the model an extended
	// reasoning allowance in tokens. Zero means provider default.
	ThinkingBudget int32

	// FailureMessage is the envelope text when extraction fails.
	FailureMessage string
}

// Structured reports whether the declaration expects a tool call back.
func (d *Declaration) Structured() bool {
	return d.Mode == ModeStructured || d.Mode == ModeGroundedStructured
}

// Grounded reports whether the declaration enables web search.
func (d *Declaration) Grounded() bool {
	return d.Mode == ModeGrounded || d.Mode == ModeGroundedStructured
}

// RequiredFields lists the top-level argument names the model must supply.
func (d *Declaration) RequiredFields() []string {
	required := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return required
}

// ParametersSchema returns the argument schema as a JSON-schema object
// suitable for a function declaration.
func (d *Declaration) ParametersSchema() map[string]any {
	return objectSchema(d.Parameters)
}

func objectSchema(fields []Parameter) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))

	for _, p := range fields {
		properties[p.Name] = p.schema()
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (p Parameter) schema() map[string]any {
	s := map[string]any{
		"type": p.Type,
	}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		s["enum"] = p.Enum
	}

	switch p.Type {
	case "array":
		if p.Items != nil {
			s["items"] = p.Items.schema()
		}
	case "object":
		if len(p.Fields) > 0 {
			inner := objectSchema(p.Fields)
			s["properties"] = inner["properties"]
			if req, ok := inner["required"]; ok {
				s["required"] = req
			}
		}
	}
	return s
}

// Get retrieves a declaration by capability id.
func Get(id string) (*Declaration, error) {
	d, ok := declarations[id]
	if !ok {
		return nil, fmt.Errorf("capability %s not found", id)
	}
	return d, nil
}

// List returns all registered declarations.
func List() []*Declaration {
	out := make([]*Declaration, 0, len(declarations))
	for _, d := range declarations {
		out = append(out, d)
	}
	return out
}
