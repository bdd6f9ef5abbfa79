package config

import (
	"os"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoadHTTPDefaults(t *testing.T) {
	t.Setenv("PORT", "")

	c, err := LoadHTTP("")
	if err != nil {
		t.Fatalf("LoadHTTP returned error: %v", err)
	}

	if !reflect.DeepEqual(*c, defaultHTTP) {
		t.Errorf("Default config mismatch.\nGot:  %+v\nWant: %+v", *c, defaultHTTP)
	}
}

func TestLoadHTTP(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		port        string
		check       func(t *testing.T, c *HTTPConfig)
	}{
		{
			name: "File overrides defaults",
			yamlContent: `
bind: 127.0.0.1:7000
log_level: debug
log_format: console
recent_limit: 5
storage_type: none
store_headers: true
worker:
  count: 8
`,
			check: func(t *testing.T, c *HTTPConfig) {
				if c.Bind != "127.0.0.1:7000" {
					t.Errorf("Bind: expected %q, got %q", "127.0.0.1:7000", c.Bind)
				}
				if c.LogLevel != "debug" || c.LogFormat != "console" {
					t.Errorf("Logging: got level %q format %q", c.LogLevel, c.LogFormat)
				}
				if c.RecentLimit != 5 {
					t.Errorf("RecentLimit: expected 5, got %d", c.RecentLimit)
				}
				if c.StorageType != "none" || !c.StoreHeaders {
					t.Errorf("Storage: got type %q store headers %t", c.StorageType, c.StoreHeaders)
				}
				if c.Worker.Count != 8 {
					t.Errorf("Worker.Count: expected 8, got %d", c.Worker.Count)
				}
				if c.Worker.QueueSize != defaultHTTP.Worker.QueueSize {
					t.Errorf("Worker.QueueSize should keep its default, got %d", c.Worker.QueueSize)
				}
			},
		},
		{
			name: "PORT replaces the port of the default bind",
			port: "9999",
			check: func(t *testing.T, c *HTTPConfig) {
				if c.Bind != "0.0.0.0:9999" {
					t.Errorf("Bind: expected %q, got %q", "0.0.0.0:9999", c.Bind)
				}
			},
		},
		{
			name:        "PORT replaces the port of a configured bind",
			yamlContent: "bind: 127.0.0.1:7000\n",
			port:        "8080",
			check: func(t *testing.T, c *HTTPConfig) {
				if c.Bind != "127.0.0.1:8080" {
					t.Errorf("Bind: expected %q, got %q", "127.0.0.1:8080", c.Bind)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)

			path := ""
			if tt.yamlContent != "" {
				path = writeConfig(t, tt.yamlContent)
			}

			c, err := LoadHTTP(path)
			if err != nil {
				t.Fatalf("LoadHTTP returned error: %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestLoadHTTPErrors(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		port        string
	}{
		{"Recent limit too large", "recent_limit: 50\n", ""},
		{"Recent limit zero", "recent_limit: 0\n", ""},
		{"Unknown storage", "storage_type: elasticsearch\n", ""},
		{"Negative body limit", "max_body_bytes: -1\n", ""},
		{"Metrics without bind", "metrics:\n  enabled: true\n  bind: \"\"\n", ""},
		{"Non numeric PORT", "", "eighty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)

			path := ""
			if tt.yamlContent != "" {
				path = writeConfig(t, tt.yamlContent)
			}

			if _, err := LoadHTTP(path); err == nil {
				t.Errorf("LoadHTTP should fail")
			}
		})
	}
}

func TestLoadHTTPMissingFile(t *testing.T) {
	if _, err := LoadHTTP("/does/not/exist.yaml"); err == nil {
		t.Errorf("LoadHTTP should fail for a missing file")
	}
}

func TestWithPort(t *testing.T) {
	tests := []struct {
		bind     string
		port     string
		expected string
	}{
		{"0.0.0.0:8888", "9000", "0.0.0.0:9000"},
		{":8888", "9000", ":9000"},
		{"localhost", "9000", ":9000"},
		{"[::1]:8888", "9000", "[::1]:9000"},
		{"0.0.0.0:8888", "", "0.0.0.0:8888"},
	}

	for _, tt := range tests {
		t.Run(tt.bind+"/"+tt.port, func(t *testing.T) {
			result, err := withPort(tt.bind, tt.port)
			if err != nil {
				t.Fatalf("withPort returned error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("withPort(%q, %q) = %q, want %q", tt.bind, tt.port, result, tt.expected)
			}
		})
	}
}
