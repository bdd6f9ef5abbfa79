package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
)

// MaxRecentLimit bounds how many recent captures /stats may return.
const MaxRecentLimit = 20

var defaultHTTP = HTTPConfig{
	Bind:         "0.0.0.0:8888",
	LogLevel:     "info",
	LogFormat:    "json",
	RecentLimit:  MaxRecentLimit,
	MaxBodyBytes: 50 << 20,
	Metrics: metric{
		Enabled: false,
		Bind:    "0.0.0.0:9001",
	},
	StorageType:  "stdout",
	StoreHeaders: false,
	Worker: worker{
		Count:     4,
		QueueSize: 2048,
	},
}

// HTTPConfig represent config of the telemock HTTP receiver.
type HTTPConfig struct {
	Bind         string `koanf:"bind"`
	LogLevel     string `koanf:"log_level"`  // Log level: "debug", "info", "warn", "error", "fatal"
	LogFormat    string `koanf:"log_format"` // "json" or "console"
	RecentLimit  int    `koanf:"recent_limit"`
	MaxBodyBytes int64  `koanf:"max_body_bytes"`
	Metrics      metric `koanf:"metrics"`
	StorageType  string `koanf:"storage_type"` // Capture log backend: "stdout" or "none"
	StoreHeaders bool   `koanf:"store_headers"`
	Worker       worker `koanf:"worker"`
}

type metric struct {
	Enabled bool   `koanf:"enabled"`
	Bind    string `koanf:"bind"`
}

type worker struct {
	Count     uint `koanf:"count"`
	QueueSize uint `koanf:"queue_size"`
}

// LoadHTTP loads the defaults, then the YAML file at path (skipped when path is
// empty), then the PORT environment variable, which replaces the port of bind.
func LoadHTTP(path string) (*HTTPConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultHTTP, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error in loading the default config: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error in loading the config file: %w", err)
		}
	}

	var port string
	err := k.Load(env.ProviderWithValue("PORT", ".", func(key, value string) (string, interface{}) {
		if key != "PORT" {
			return "", nil
		}
		port = value
		return "", nil
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("error in loading the environment: %w", err)
	}

	var c HTTPConfig
	if err := k.Unmarshal("", &c); err != nil {
		return nil, fmt.Errorf("error in unmarshalling the config: %w", err)
	}

	if port != "" {
		bind, err := withPort(c.Bind, port)
		if err != nil {
			return nil, err
		}
		c.Bind = bind
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// withPort replaces the port of a host:port bind address.
func withPort(bind, port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		return bind, nil
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid PORT %q", port)
		}
	}

	host, _, err := net.SplitHostPort(bind)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, port), nil
}

func (c *HTTPConfig) validate() error {
	if c.Bind == "" {
		return fmt.Errorf("bind can not be empty")
	}
	if c.RecentLimit < 1 || c.RecentLimit > MaxRecentLimit {
		return fmt.Errorf("recent_limit must be between 1 and %d, got %d", MaxRecentLimit, c.RecentLimit)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	switch c.StorageType {
	case "stdout", "none":
	default:
		return fmt.Errorf("unknown storage_type %q", c.StorageType)
	}
	if c.Metrics.Enabled && c.Metrics.Bind == "" {
		return fmt.Errorf("metrics.bind can not be empty when metrics are enabled")
	}
	return nil
}
