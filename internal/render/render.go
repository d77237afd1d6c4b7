// Package render turns a form definition into the prompts an applicant sees
// and checks raw answers against it before they are stored. Nothing here does
// I/O; the same checks run in the HTTP layer and again inside the submission
// service against the live definition.
package render

import (
	"regexp"
	"strconv"
	"strings"

	"clubforms-backend/internal/domain"
)

// Prompt is the contract the UI layer consumes: one entry per field, in
// schema order.
type Prompt struct {
	Name      string           `json:"name"`
	Label     string           `json:"label"`
	Type      domain.FieldType `json:"type"`
	Required  bool             `json:"required"`
	InputType string           `json:"input_type"`
}

// Values are validated answers keyed by field name. Optional fields left
// blank are absent.
type Values map[string]string

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)+$`)

// numberPattern is the decimal syntax a browser number input submits.
var numberPattern = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)

// Prompts lists the inputs of def in display order. Unknown types render as
// text.
func Prompts(def *domain.FormDefinition) []Prompt {
	prompts := make([]Prompt, len(def.Fields))
	for i, f := range def.Fields {
		t, _ := domain.ParseFieldType(string(f.Type))
		prompts[i] = Prompt{
			Name:      f.Name,
			Label:     f.Label,
			Type:      t,
			Required:  f.Required,
			InputType: string(t),
		}
	}
	return prompts
}

// Validate checks raw answers against def. Every problem is collected into a
// single *domain.ValidationError. Keys that are not part of the schema are
// dropped.
func Validate(def *domain.FormDefinition, raw map[string]string) (Values, error) {
	ve := &domain.ValidationError{}
	out := make(Values, len(def.Fields))

	for _, f := range def.Fields {
		v := strings.TrimSpace(raw[f.Name])
		if v == "" {
			if f.Required {
				ve.Add(f.Name, "%s is required", f.Label)
			}
			continue
		}

		t, _ := domain.ParseFieldType(string(f.Type))
		switch t {
		case domain.FieldTypeEmail:
			if !IsEmail(v) {
				ve.Add(f.Name, "%s must be a valid email address", f.Label)
				continue
			}
		case domain.FieldTypeNumber:
			if !IsNumber(v) {
				ve.Add(f.Name, "%s must be a number", f.Label)
				continue
			}
		}
		out[f.Name] = v
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func IsEmail(s string) bool {
	return len(s) <= 254 && emailPattern.MatchString(s)
}

// IsNumber accepts plain decimals with an optional exponent. Hex floats,
// digit separators and values outside the float64 range are rejected.
func IsNumber(s string) bool {
	if !numberPattern.MatchString(s) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
