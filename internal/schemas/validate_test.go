package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
)

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		wantField string
	}{
		{"empty object", `{}`, ""},
		{"full", `{
			"preset": "Support Team Lead",
			"role": "Support Lead",
			"seniority": "Manager",
			"function": "support",
			"company_stage": "Series B",
			"company_size": "51-200",
			"team_size": 6,
			"customer_facing": true,
			"manager_priorities": "Bring first response time under four hours.",
			"known_constraints": "Backlog is growing.",
			"company_name": "Acme",
			"website": "acme.example"
		}`, ""},
		{"unknown field", `{"salary": 100000}`, "(root)"},
		{"team size as string", `{"team_size": "six"}`, "team_size"},
		{"team size zero", `{"team_size": 0}`, "team_size"},
		{"customer facing as string", `{"customer_facing": "yes"}`, "customer_facing"},
		{"not an object", `["role"]`, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission([]byte(tt.document))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Errors)
			assert.Equal(t, tt.wantField, verr.Errors[0].Field)
		})
	}
}

func TestValidateSubmission_MalformedJSON(t *testing.T) {
	err := ValidateSubmission([]byte(`{ invalid json }`))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "(root)", verr.Errors[0].Field)
	assert.Contains(t, verr.Errors[0].Message, "invalid JSON")
}

func TestValidateExportRequest(t *testing.T) {
	assert.NoError(t, ValidateExportRequest([]byte(`{"text": "# Plan"}`)))
	assert.Error(t, ValidateExportRequest([]byte(`{}`)))
	assert.Error(t, ValidateExportRequest([]byte(`{"text": ""}`)))
	assert.Error(t, ValidateExportRequest([]byte(`{"text": "x", "format": "pdf"}`)))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", []byte(`{}`))
	require.Error(t, err)
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.schema.json", loadErr.Path)
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "Go"}`))

	err := ValidateJSONString(schema, `{"name": 3}`)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Errors[0].Field)

	err = ValidateJSONString(`{ not a schema`, `{}`)
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidationError_FieldErrors(t *testing.T) {
	verr := &ValidationError{Errors: []FieldError{{Field: "team_size", Message: "Invalid type. Expected: integer, given: string"}}}
	assert.Equal(t, []types.FieldError{{Field: "team_size", Message: "Invalid type. Expected: integer, given: string"}}, verr.FieldErrors())
	assert.Contains(t, verr.Error(), "1. team_size")
}
