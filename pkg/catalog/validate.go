package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports per-field validation failures. Field names map to
// messages suitable for display next to the form input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError reports a deletion blocked by referential integrity. Message
// carries the entity-specific guidance from the definition's Guard.
type ConflictError struct {
	Kind    Kind
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s still in use: %s", e.Kind, e.Message)
}

// Validate checks fields against the definition's field table and returns a
// *ValidationError carrying one message per offending field, or nil when the
// input is valid. Unknown field names are rejected.
func Validate(def Definition, fields Fields) error {
	problems := make(map[string]string)

	for name := range fields {
		if _, ok := def.Field(name); !ok {
			problems[name] = "Unknown field"
		}
	}

	for _, f := range def.Fields {
		if msg := validateField(f, fields); msg != "" {
			problems[f.Name] = msg
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}

func validateField(f Field, fields Fields) string {
	switch f.Kind {
	case FieldText, FieldImage, FieldReference:
		if f.Required && strings.TrimSpace(fields.String(f.Name)) == "" {
			return f.Label + " is required"
		}
	case FieldColor:
		value := strings.TrimSpace(fields.String(f.Name))
		if value == "" {
			if f.Required {
				return f.Label + " is required"
			}
			return ""
		}
		if !strings.HasPrefix(value, "#") || len(value) < 4 || len(value) > 9 {
			return f.Label + " must be a hex color like #aabbcc"
		}
	case FieldDecimal:
		if _, present := fields[f.Name]; !present {
			if f.Required {
				return f.Label + " is required"
			}
			return ""
		}
		d, err := fields.Decimal(f.Name)
		if err != nil {
			return f.Label + " must be a number"
		}
		if !d.IsPositive() {
			return f.Label + " must be greater than 0"
		}
	case FieldImageList:
		if f.Required && len(fields.Strings(f.Name)) == 0 {
			return "At least one image is required"
		}
	case FieldFlag:
		if v, present := fields[f.Name]; present {
			if _, ok := v.(bool); !ok {
				return f.Label + " must be true or false"
			}
		}
	}
	return ""
}
