package domain

import (
	"fmt"
	"strconv"
	"time"
)

type OwnerKind string

const (
	OwnerKindClub  OwnerKind = "club"
	OwnerKindEvent OwnerKind = "event"
)

func ParseOwnerKind(s string) (OwnerKind, error) {
	switch OwnerKind(s) {
	case OwnerKindClub, OwnerKindEvent:
		return OwnerKind(s), nil
	}
	return "", fmt.Errorf("unknown owner kind %q", s)
}

// Owner is the club or event a form is attached to.
type Owner struct {
	Kind OwnerKind `json:"owner_kind"`
	ID   int64     `json:"owner_id"`
}

func (o Owner) String() string {
	return string(o.Kind) + ":" + strconv.FormatInt(o.ID, 10)
}

type FormStatus string

const (
	FormStatusOpen   FormStatus = "open"
	FormStatusClosed FormStatus = "closed"
)

// FormDefinition is one version of an owner's dynamic form. Creating a new
// form for the same owner marks the previous row Superseded; its submissions
// stay attached to the old ID.
type FormDefinition struct {
	ID         int64         `json:"id"`
	Owner      Owner         `json:"owner"`
	Version    int32         `json:"version"`
	Fields     []FieldSchema `json:"fields"`
	Status     FormStatus    `json:"status"`
	Capacity   *int          `json:"capacity"`
	Superseded bool          `json:"superseded"`
	CreatedAt  time.Time     `json:"created_at"`
	ClosedAt   *time.Time    `json:"closed_at,omitempty"`
}

func (f *FormDefinition) IsOpen() bool {
	return f.Status == FormStatusOpen && !f.Superseded
}

// Field returns the schema entry for name.
func (f *FormDefinition) Field(name string) (FieldSchema, bool) {
	for _, fs := range f.Fields {
		if fs.Name == name {
			return fs, true
		}
	}
	return FieldSchema{}, false
}

// FieldNames returns the field names in display order.
func (f *FormDefinition) FieldNames() []string {
	names := make([]string, len(f.Fields))
	for i, fs := range f.Fields {
		names[i] = fs.Name
	}
	return names
}

// HasRoom reports whether one more submission fits given the current count.
func (f *FormDefinition) HasRoom(count int) bool {
	return f.Capacity == nil || count < *f.Capacity
}

// NewFormDefinition normalizes the field list and validates the result. The
// returned definition is open and not yet persisted.
func NewFormDefinition(owner Owner, fields []FieldSchema, capacity *int) (*FormDefinition, error) {
	def := &FormDefinition{
		Owner:    owner,
		Fields:   make([]FieldSchema, len(fields)),
		Status:   FormStatusOpen,
		Capacity: capacity,
	}
	for i, f := range fields {
		def.Fields[i] = f.Normalized()
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// SubmittedAtColumn is the export column holding the submission time. No
// field may use it as its name.
const SubmittedAtColumn = "submitted_at"

// Validate checks the schema invariants: at least one field, unique
// non-empty names, known types and a sensible capacity.
func (f *FormDefinition) Validate() error {
	ve := &ValidationError{}

	if _, err := ParseOwnerKind(string(f.Owner.Kind)); err != nil {
		ve.Add("owner_kind", "must be club or event")
	}
	if f.Owner.ID <= 0 {
		ve.Add("owner_id", "must be positive")
	}
	if len(f.Fields) == 0 {
		ve.Add("fields", "at least one field is required")
	}

	seen := make(map[string]bool, len(f.Fields))
	for i, fs := range f.Fields {
		key := fs.Name
		if key == "" {
			key = fmt.Sprintf("fields[%d]", i)
			ve.Add(key, "name or label is required")
		} else if seen[fs.Name] {
			ve.Add(key, "duplicate field name")
		} else if fs.Name == SubmittedAtColumn {
			ve.Add(key, "%q is reserved for the submission time", SubmittedAtColumn)
		}
		seen[fs.Name] = true

		if fs.Label == "" {
			ve.Add(key, "label is required")
		}
		if !fs.Type.Known() {
			ve.Add(key, "unknown field type %q", fs.Type)
		}
	}

	if f.Capacity != nil {
		if f.Owner.Kind == OwnerKindClub {
			ve.Add("capacity", "only event forms can set a capacity")
		} else if *f.Capacity < 1 {
			ve.Add("capacity", "must be at least 1")
		}
	}

	return ve.OrNil()
}
