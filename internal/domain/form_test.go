package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestNormalizeFieldName(t *testing.T) {
	cases := map[string]string{
		"Roll Number":   "roll_number",
		"  Email ID ":   "email_id",
		"Year (1-4)?":   "year_1_4",
		"already_snake": "already_snake",
		"!!!":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeFieldName(in), in)
	}
}

func TestParseFieldType(t *testing.T) {
	ft, ok := ParseFieldType("Email")
	assert.True(t, ok)
	assert.Equal(t, FieldTypeEmail, ft)

	ft, ok = ParseFieldType("textarea")
	assert.False(t, ok)
	assert.Equal(t, FieldTypeText, ft)
}

func TestNewFormDefinition(t *testing.T) {
	event := Owner{Kind: OwnerKindEvent, ID: 4}

	t.Run("DerivesNamesFromLabels", func(t *testing.T) {
		def, err := NewFormDefinition(event, []FieldSchema{
			{Label: "Full Name", Type: FieldTypeText, Required: true},
			{Name: "email", Label: "Email", Type: FieldTypeEmail},
		}, intPtr(50))
		require.NoError(t, err)
		assert.Equal(t, []string{"full_name", "email"}, def.FieldNames())
		assert.Equal(t, FormStatusOpen, def.Status)
		assert.True(t, def.IsOpen())
	})

	t.Run("EmptyFields", func(t *testing.T) {
		_, err := NewFormDefinition(event, nil, nil)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has("fields"))
	})

	t.Run("DuplicateNames", func(t *testing.T) {
		_, err := NewFormDefinition(event, []FieldSchema{
			{Name: "email", Label: "Email", Type: FieldTypeEmail},
			{Label: "EMAIL", Type: FieldTypeText},
		}, nil)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has("email"))
	})

	t.Run("ReservedSubmittedAtName", func(t *testing.T) {
		_, err := NewFormDefinition(Owner{Kind: OwnerKindClub, ID: 1}, []FieldSchema{
			{Label: "Submitted At", Type: FieldTypeText},
		}, nil)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has(SubmittedAtColumn))
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := NewFormDefinition(event, []FieldSchema{
			{Name: "cv", Label: "CV", Type: "file"},
		}, nil)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has("cv"))
	})

	t.Run("CapacityRules", func(t *testing.T) {
		fields := []FieldSchema{{Name: "email", Label: "Email", Type: FieldTypeEmail}}

		_, err := NewFormDefinition(Owner{Kind: OwnerKindClub, ID: 1}, fields, intPtr(10))
		assert.True(t, IsValidation(err))

		_, err = NewFormDefinition(event, fields, intPtr(0))
		assert.True(t, IsValidation(err))

		def, err := NewFormDefinition(event, fields, intPtr(1))
		require.NoError(t, err)
		assert.True(t, def.HasRoom(0))
		assert.False(t, def.HasRoom(1))
	})

	t.Run("BadOwner", func(t *testing.T) {
		_, err := NewFormDefinition(Owner{Kind: "society", ID: 0}, []FieldSchema{
			{Name: "email", Label: "Email", Type: FieldTypeEmail},
		}, nil)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has("owner_kind"))
		assert.True(t, ve.Has("owner_id"))
	})
}

func TestValidationErrorMessage(t *testing.T) {
	ve := &ValidationError{}
	assert.NoError(t, ve.OrNil())

	ve.Add("email", "must be a valid email address")
	ve.Add("", "form is malformed")
	assert.Equal(t, "validation failed: email: must be a valid email address; form is malformed", ve.Error())
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "RoboticsClub", SafeFileName(`Robo"tics/Club`))
	assert.Equal(t, "Hack Night 2.0", SafeFileName(" Hack Night 2.0 "))
	assert.Equal(t, "form", SafeFileName("  "))
}
