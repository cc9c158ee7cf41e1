package domain

import "time"

// Field kinds with type checks in strict custom-field mode. Other kinds are accepted as-is.
const (
	FieldKindCheckbox = "checkbox"
	FieldKindNumber   = "number"
	FieldKindText     = "text"
	FieldKindCSV      = "csv"
)

// FieldDefinition declares one dynamic field of a TaskType.
type FieldDefinition struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Required bool   `json:"required"`
}

// TaskType is an admin-defined template of dynamic fields.
type TaskType struct {
	ID          string
	Name        string
	Description string
	Fields      []FieldDefinition
	CreatedBy   string
	CreatedAt   time.Time
}

// Field looks up a declared field by name.
func (tt *TaskType) Field(name string) (FieldDefinition, bool) {
	for _, f := range tt.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Workflow is an admin-defined label; it carries no transition semantics.
type Workflow struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

// ValidateCustomFields checks answers against the fields declared by tt.
// The reserved CSV field is always accepted.
func (tt *TaskType) ValidateCustomFields(values []CustomFieldValue) error {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v.FieldName == CSVFieldName {
			continue
		}
		def, ok := tt.Field(v.FieldName)
		if !ok {
			return Invalid("custom field %q is not declared by task type %q", v.FieldName, tt.Name)
		}
		seen[v.FieldName] = true
		if v.Value.IsNull() {
			if def.Required {
				return Invalid("custom field %q is required", def.Name)
			}
			continue
		}
		switch def.Kind {
		case FieldKindCheckbox:
			if _, ok := v.Value.Bool(); !ok {
				return Invalid("custom field %q must be a boolean", def.Name)
			}
		case FieldKindNumber:
			if _, ok := v.Value.Number(); !ok {
				return Invalid("custom field %q must be a number", def.Name)
			}
		}
	}
	for _, def := range tt.Fields {
		if def.Required && !seen[def.Name] {
			return Invalid("custom field %q is required", def.Name)
		}
	}
	return nil
}
