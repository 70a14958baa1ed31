package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the sponsorscout client.
type Config struct {
	Servers        []ServerConfig
	RequestTimeout time.Duration // 0 leaves timeouts to the transport
	History        HistoryConfig
	Metrics        MetricsConfig
}

// ServerConfig describes one deployment of the sponsorship service.
type ServerConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	Enabled bool   `yaml:"enabled"`
}

// HistoryConfig controls the in-memory session history.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"` // entries shown in the history view
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"` // empty disables the endpoint
}

const (
	DefaultServerName    = "local"
	DefaultServerBaseURL = "http://localhost:8000"
	defaultHistoryLimit  = 50
)

// rawConfig is used for YAML unmarshaling (duration as string, optional blocks as pointers).
type rawConfig struct {
	Servers        []ServerConfig    `yaml:"servers"`
	RequestTimeout string            `yaml:"request_timeout"`
	History        *rawHistoryConfig `yaml:"history"`
	Metrics        MetricsConfig     `yaml:"metrics"`
}

type rawHistoryConfig struct {
	Enabled *bool `yaml:"enabled"`
	Limit   *int  `yaml:"limit"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Servers: []ServerConfig{
			{Name: DefaultServerName, BaseURL: DefaultServerBaseURL, Enabled: true},
		},
		History: HistoryConfig{Enabled: true, Limit: defaultHistoryLimit},
	}
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but returns Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse parses YAML config bytes, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var timeout time.Duration
	if raw.RequestTimeout != "" {
		d, err := time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse request_timeout %q: %w", raw.RequestTimeout, err)
		}
		timeout = d
	}

	cfg := Default()
	if len(raw.Servers) > 0 {
		cfg.Servers = raw.Servers
	}
	cfg.RequestTimeout = timeout
	cfg.Metrics = raw.Metrics
	if raw.History != nil {
		if raw.History.Enabled != nil {
			cfg.History.Enabled = *raw.History.Enabled
		}
		if raw.History.Limit != nil {
			cfg.History.Limit = *raw.History.Limit
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnabledServers returns the servers with enabled: true, in file order.
func (c *Config) EnabledServers() []ServerConfig {
	var out []ServerConfig
	for _, s := range c.Servers {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Server returns the enabled server called name.
func (c *Config) Server(name string) (ServerConfig, bool) {
	for _, s := range c.EnabledServers() {
		if s.Name == name {
			return s, true
		}
	}
	return ServerConfig{}, false
}

func validate(cfg *Config) error {
	if len(cfg.EnabledServers()) == 0 {
		return fmt.Errorf("at least one server must be enabled")
	}
	seen := make(map[string]bool)
	for _, s := range cfg.Servers {
		if s.Name == "" {
			return fmt.Errorf("servers: every server needs a name")
		}
		if seen[s.Name] {
			return fmt.Errorf("servers: duplicate name %q", s.Name)
		}
		seen[s.Name] = true

		u, err := url.Parse(s.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("servers[%s].base_url must be an absolute http(s) URL, got %q", s.Name, s.BaseURL)
		}
	}

	if cfg.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %v", cfg.RequestTimeout)
	}
	if cfg.History.Limit < 0 {
		return fmt.Errorf("history.limit must not be negative, got %d", cfg.History.Limit)
	}
	return nil
}
