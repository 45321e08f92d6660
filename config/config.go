package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Gemini struct {
		ApiKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`

	Debate struct {
		// StageSeconds overrides the built-in duration of a stage, keyed by
		// stage id (e.g. "opening_pro": 120).
		StageSeconds          map[string]int `yaml:"stageSeconds"`
		HeartbeatWindowSecs   int            `yaml:"heartbeatWindowSeconds"`
		VerdictTimeoutSecs    int            `yaml:"verdictTimeoutSeconds"`
		EnableMessageAnalysis bool           `yaml:"enableMessageAnalysis"`
	} `yaml:"debate"`
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Debate.HeartbeatWindowSecs == 0 {
		cfg.Debate.HeartbeatWindowSecs = 15
	}
	if cfg.Debate.VerdictTimeoutSecs == 0 {
		cfg.Debate.VerdictTimeoutSecs = 30
	}

	return &cfg, nil
}
