package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.MaxSources)
	assert.Equal(t, "technical", cfg.Style)
	assert.Equal(t, "simple", cfg.Mode)
	assert.Equal(t, 1, cfg.FetchWorkers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Empty(t, cfg.Topic)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.json")
	content := `{
		"exported_at": "2024-01-15T10:30:00Z",
		"version": "1.0",
		"topic": "quantum computing",
		"max_sources": 8,
		"summary_style": "executive",
		"sources": ["https://example.com/a"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "quantum computing", cfg.Topic)
	assert.Equal(t, 8, cfg.MaxSources)
	assert.Equal(t, "executive", cfg.Style)
	assert.Equal(t, []string{"https://example.com/a"}, cfg.Sources)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.yaml")
	content := `exported_at: "2024-01-15T10:30:00Z"
version: "1.0"
topic: quantum computing
max_sources: 8
summary_style: executive
fetch_mode: intelligent
verbose: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "quantum computing", cfg.Topic)
	assert.Equal(t, 8, cfg.MaxSources)
	assert.Equal(t, "intelligent", cfg.Mode)
	assert.True(t, cfg.Verbose)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.toml")
	require.NoError(t, os.WriteFile(path, []byte("topic = \"x\""), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	original := &Config{
		Topic:      "wildfire detection",
		Sources:    []string{"https://example.com/fire"},
		MaxSources: 10,
		Style:      "casual",
		Mode:       "intelligent",
	}

	for _, ext := range []string{"json", "yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mission."+ext)
			require.NoError(t, Save(original, path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, original, loaded)
		})
	}
}

func TestSave_WritesMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.json")
	require.NoError(t, Save(&Config{Topic: "ai safety"}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"exported_at"`)
	assert.Contains(t, string(data), `"version": "1.0"`)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid full config",
			cfg: Config{
				Topic:      "quantum computing",
				Sources:    []string{"https://example.com/a"},
				MaxSources: 5,
				Style:      "technical",
				Mode:       "simple",
			},
		},
		{
			name:    "missing topic",
			cfg:     Config{MaxSources: 5},
			wantErr: "missing required field: topic",
		},
		{
			name:    "topic too short",
			cfg:     Config{Topic: "ab"},
			wantErr: "'topic' must be at least 3 characters",
		},
		{
			name:    "unknown style",
			cfg:     Config{Topic: "quantum computing", Style: "verbose-prose"},
			wantErr: "config error",
		},
		{
			name:    "max sources above cap",
			cfg:     Config{Topic: "quantum computing", MaxSources: 21},
			wantErr: "config error",
		},
		{
			name:    "negative retries",
			cfg:     Config{Topic: "quantum computing", MaxRetries: -1},
			wantErr: "'max_retries' must be non-negative",
		},
		{
			name:    "invalid source url",
			cfg:     Config{Topic: "quantum computing", Sources: []string{"not a url"}},
			wantErr: "config error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	t.Run("empty config takes all defaults", func(t *testing.T) {
		cfg := Config{}
		merged := cfg.MergeWithDefaults(DefaultConfig())

		assert.Equal(t, DefaultConfig(), merged)
	})

	t.Run("set fields win over defaults", func(t *testing.T) {
		cfg := Config{
			Topic:      "fusion energy",
			MaxSources: 12,
			Style:      "casual",
		}
		merged := cfg.MergeWithDefaults(DefaultConfig())

		assert.Equal(t, "fusion energy", merged.Topic)
		assert.Equal(t, 12, merged.MaxSources)
		assert.Equal(t, "casual", merged.Style)
		assert.Equal(t, "simple", merged.Mode)
		assert.Equal(t, 3, merged.MaxRetries)
	})

	t.Run("bools are not merged", func(t *testing.T) {
		cfg := Config{Topic: "fusion energy"}
		merged := cfg.MergeWithDefaults(Config{Verbose: true})

		assert.False(t, merged.Verbose)
	})
}
