package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["topic"],
	"properties": {
		"topic": {"type": "string", "minLength": 3},
		"max_sources": {"type": "integer", "minimum": 1}
	},
	"additionalProperties": false
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"topic": "quantum computing", "max_sources": 5}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_Violations(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{
			name:    "missing required field",
			doc:     `{"max_sources": 5}`,
			wantMsg: "topic is required",
		},
		{
			name:    "wrong type",
			doc:     `{"topic": "quantum computing", "max_sources": "five"}`,
			wantMsg: "max_sources",
		},
		{
			name:    "unknown field",
			doc:     `{"topic": "quantum computing", "bogus": 1}`,
			wantMsg: "not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONString(testSchema, tt.doc)
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.NotEmpty(t, validationErr.Errors)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": "not-a-real-type"}`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.NotNil(t, errors.Unwrap(loadErr))
}

func TestValidationError_NumbersViolations(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{
		{Field: "topic", Message: "topic is required"},
		{Field: "max_sources", Message: "Invalid type"},
	}}

	msg := ve.Error()
	assert.Contains(t, msg, "validation failed:")
	assert.Contains(t, msg, "1. topic: topic is required")
	assert.Contains(t, msg, "2. max_sources: Invalid type")
}

func TestValidateJSONFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(testSchema), 0o644))

	t.Run("valid document", func(t *testing.T) {
		docPath := filepath.Join(dir, "valid.json")
		require.NoError(t, os.WriteFile(docPath, []byte(`{"topic": "ocean currents"}`), 0o644))

		assert.NoError(t, ValidateJSONFile(schemaPath, docPath))
	})

	t.Run("invalid document", func(t *testing.T) {
		docPath := filepath.Join(dir, "invalid.json")
		require.NoError(t, os.WriteFile(docPath, []byte(`{"topic": "ab"}`), 0o644))

		err := ValidateJSONFile(schemaPath, docPath)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("missing schema file", func(t *testing.T) {
		err := ValidateJSONFile(filepath.Join(dir, "absent-schema.json"), schemaPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema file not found")
	})

	t.Run("missing json file", func(t *testing.T) {
		err := ValidateJSONFile(schemaPath, filepath.Join(dir, "absent.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JSON file not found")
	})
}

func TestResolveSchemaPath(t *testing.T) {
	resolved := ResolveSchemaPath(MissionConfigSchema)
	require.NotEmpty(t, resolved)
	assert.True(t, filepath.IsAbs(resolved))

	assert.Empty(t, ResolveSchemaPath(filepath.Join("schemas", "no_such_schema.json")))
}

func TestMissionConfigSchema_AcceptsExportedConfig(t *testing.T) {
	schemaPath := ResolveSchemaPath(MissionConfigSchema)
	require.NotEmpty(t, schemaPath)

	path := filepath.Join(t.TempDir(), "mission.json")
	cfg := &Config{
		Topic:      "quantum computing",
		Sources:    []string{"https://example.com/a"},
		MaxSources: 5,
		Style:      "technical",
		Mode:       "intelligent",
	}
	require.NoError(t, Save(cfg, path))

	assert.NoError(t, ValidateJSONFile(schemaPath, path))
}

func TestMissionConfigSchema_RejectsBadDocuments(t *testing.T) {
	schemaPath := ResolveSchemaPath(MissionConfigSchema)
	require.NotEmpty(t, schemaPath)

	schemaContent, err := os.ReadFile(schemaPath)
	require.NoError(t, err)

	tests := []struct {
		name string
		doc  string
	}{
		{"missing topic", `{"max_sources": 5}`},
		{"topic too short", `{"topic": "ab"}`},
		{"bad style", `{"topic": "quantum computing", "summary_style": "florid"}`},
		{"non http source", `{"topic": "quantum computing", "sources": ["ftp://example.com"]}`},
		{"unknown field", `{"topic": "quantum computing", "shard_count": 4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONString(string(schemaContent), tt.doc)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}
