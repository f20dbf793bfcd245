// Package config loads service configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Reason  ReasonConfig  `yaml:"reason"`
	Session SessionConfig `yaml:"session"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig selects and configures the language model provider.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ReasonConfig tunes the logic engine.
type ReasonConfig struct {
	QueryTimeout time.Duration `yaml:"query_timeout"`
	MaxSolutions int           `yaml:"max_solutions"`
}

// SessionConfig tunes the session store.
type SessionConfig struct {
	// TTL evicts sessions idle longer than this. Zero keeps sessions
	// until deleted.
	TTL time.Duration `yaml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "mock",
			Timeout:  120 * time.Second,
		},
		Reason: ReasonConfig{
			QueryTimeout: 5 * time.Second,
			MaxSolutions: 100,
		},
		Session: SessionConfig{
			TTL: 0,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error; the defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to defaults
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MCR_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("MCR_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" && c.LLM.BaseURL == "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("MCR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MCR_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Session.TTL = d
		}
	}
	if v := os.Getenv("MCR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
