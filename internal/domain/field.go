package domain

import (
	"regexp"
	"strings"
)

type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeEmail  FieldType = "email"
)

// ParseFieldType maps a raw type name onto the enumerated set. Unknown names
// come back as text with ok=false so renderers can fail closed while schema
// creation can still reject them.
func ParseFieldType(s string) (t FieldType, ok bool) {
	switch FieldType(strings.ToLower(strings.TrimSpace(s))) {
	case FieldTypeText:
		return FieldTypeText, true
	case FieldTypeNumber:
		return FieldTypeNumber, true
	case FieldTypeEmail:
		return FieldTypeEmail, true
	}
	return FieldTypeText, false
}

// Known reports whether t is one of the enumerated field types.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeEmail:
		return true
	}
	return false
}

// FieldSchema describes one input of a dynamic form. Name is the key under
// which submitted values are stored and the export column header.
type FieldSchema struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

var nonFieldChars = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeFieldName turns a free-form label into a stable field name:
// "Roll Number" becomes "roll_number".
func NormalizeFieldName(s string) string {
	name := strings.ToLower(strings.TrimSpace(s))
	name = nonFieldChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// Normalized returns a copy with the name derived from the label when it is
// missing, and label/name trimmed.
func (f FieldSchema) Normalized() FieldSchema {
	f.Label = strings.TrimSpace(f.Label)
	if strings.TrimSpace(f.Name) == "" {
		f.Name = NormalizeFieldName(f.Label)
	} else {
		f.Name = NormalizeFieldName(f.Name)
	}
	return f
}
