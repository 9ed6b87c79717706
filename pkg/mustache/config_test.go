package mustache

import (
	"bytes"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.DisableCache {
		t.Errorf("DefaultConfig DisableCache = true, want false")
	}

	if config.Tags != "{{ }}" {
		t.Errorf("DefaultConfig Tags = %q, want {{ }}", config.Tags)
	}

	if config.LogLevel != "info" {
		t.Errorf("DefaultConfig LogLevel = %s, want info", config.LogLevel)
	}

	if config.MaxPartialDepth != 0 {
		t.Errorf("DefaultConfig MaxPartialDepth = %d, want 0", config.MaxPartialDepth)
	}

	if config.StrictMode {
		t.Errorf("DefaultConfig StrictMode = true, want false")
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, config *Config)
	}{
		{
			name:    "disable cache",
			envVars: map[string]string{"MUSTACHE_DISABLE_CACHE": "yes"},
			check: func(t *testing.T, config *Config) {
				if !config.DisableCache {
					t.Errorf("DisableCache = false, want true")
				}
			},
		},
		{
			name:    "tags",
			envVars: map[string]string{"MUSTACHE_TAGS": "<% %>"},
			check: func(t *testing.T, config *Config) {
				if config.Tags != "<% %>" {
					t.Errorf("Tags = %q, want <%% %%>", config.Tags)
				}
			},
		},
		{
			name:    "log level is lowercased",
			envVars: map[string]string{"MUSTACHE_LOG_LEVEL": "DEBUG"},
			check: func(t *testing.T, config *Config) {
				if config.LogLevel != "debug" {
					t.Errorf("LogLevel = %s, want debug", config.LogLevel)
				}
			},
		},
		{
			name:    "max partial depth",
			envVars: map[string]string{"MUSTACHE_MAX_PARTIAL_DEPTH": "5"},
			check: func(t *testing.T, config *Config) {
				if config.MaxPartialDepth != 5 {
					t.Errorf("MaxPartialDepth = %d, want 5", config.MaxPartialDepth)
				}
			},
		},
		{
			name:    "invalid max partial depth is ignored",
			envVars: map[string]string{"MUSTACHE_MAX_PARTIAL_DEPTH": "lots"},
			check: func(t *testing.T, config *Config) {
				if config.MaxPartialDepth != 0 {
					t.Errorf("MaxPartialDepth = %d, want 0", config.MaxPartialDepth)
				}
			},
		},
		{
			name:    "strict mode",
			envVars: map[string]string{"MUSTACHE_STRICT_MODE": "1"},
			check: func(t *testing.T, config *Config) {
				if !config.StrictMode {
					t.Errorf("StrictMode = false, want true")
				}
			},
		},
		{
			name:    "false values",
			envVars: map[string]string{"MUSTACHE_STRICT_MODE": "no", "MUSTACHE_DISABLE_CACHE": "off"},
			check: func(t *testing.T, config *Config) {
				if config.StrictMode || config.DisableCache {
					t.Errorf("config = %+v, want both flags false", config)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			tt.check(t, ConfigFromEnvironment())
		})
	}
}

func TestNewConfigWithDefaults(t *testing.T) {
	if got := NewConfigWithDefaults(nil); *got != *DefaultConfig() {
		t.Errorf("NewConfigWithDefaults(nil) = %+v, want defaults", got)
	}

	overrides := &Config{StrictMode: true, MaxPartialDepth: 3}
	got := NewConfigWithDefaults(overrides)
	if got == overrides {
		t.Error("NewConfigWithDefaults() returned its argument")
	}
	if !got.StrictMode || got.MaxPartialDepth != 3 {
		t.Errorf("overrides lost: %+v", got)
	}
	if got.Tags != "{{ }}" || got.LogLevel != "info" {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "custom tags", modify: func(c *Config) { c.Tags = "[[ ]]" }},
		{name: "log off", modify: func(c *Config) { c.LogLevel = "off" }},
		{name: "bad tags", modify: func(c *Config) { c.Tags = "<%" }, wantErr: "invalid tags"},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "loud" }, wantErr: "invalid log level"},
		{name: "negative depth", modify: func(c *Config) { c.MaxPartialDepth = -1 }, wantErr: "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigTags(t *testing.T) {
	var buf bytes.Buffer
	old := GetLogger()
	SetLogger(NewLogger(&buf, LogWarn))
	defer SetLogger(old)

	if got := (&Config{Tags: "<% %>"}).tags(); got != (Tags{Open: "<%", Close: "%>"}) {
		t.Errorf("tags() = %+v, want <%% %%>", got)
	}
	if got := (&Config{}).tags(); got != DefaultTags {
		t.Errorf("tags() with empty setting = %+v, want defaults", got)
	}
	if got := (&Config{Tags: "broken"}).tags(); got != DefaultTags {
		t.Errorf("tags() with bad setting = %+v, want defaults", got)
	}
	if !strings.Contains(buf.String(), "[WARN] Invalid configured tags") {
		t.Errorf("log = %q, want a warning", buf.String())
	}
}

func TestEngineFromConfig(t *testing.T) {
	engine := NewWithConfig(&Config{Tags: "[[ ]]", DisableCache: true})

	if engine.Tags() != (Tags{Open: "[[", Close: "]]"}) {
		t.Errorf("Tags() = %+v, want [[ ]]", engine.Tags())
	}
	if engine.Cache() != nil {
		t.Error("Cache() should be nil with DisableCache")
	}
	if engine.Config().LogLevel != "info" {
		t.Errorf("Config().LogLevel = %q, want info", engine.Config().LogLevel)
	}

	got, err := engine.Render("[[x]]", map[string]any{"x": 1}, nil)
	if err != nil || got != "1" {
		t.Errorf("Render() = %q, %v, want %q", got, err, "1")
	}

	// WithConfig re-enables caching when the new config allows it.
	engine = NewWithOptions(WithConfig(&Config{DisableCache: true}), WithConfig(DefaultConfig()))
	if engine.Cache() == nil {
		t.Error("Cache() should be restored by WithConfig")
	}
}

func TestGlobalConfig(t *testing.T) {
	original := GetGlobalConfig()
	defer SetGlobalConfig(original)

	got := GetGlobalConfig()
	got.StrictMode = !got.StrictMode
	if GetGlobalConfig().StrictMode == got.StrictMode {
		t.Error("GetGlobalConfig() returned a shared pointer")
	}

	SetGlobalConfig(&Config{Tags: "{{ }}", LogLevel: "error"})
	if GetGlobalConfig().LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", GetGlobalConfig().LogLevel)
	}
	if GetLogger().Level() != LogError {
		t.Errorf("logger level = %s, want ERROR", GetLogger().Level())
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{" 1 ", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		if got := parseBool(tt.input); got != tt.want {
			t.Errorf("parseBool(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
