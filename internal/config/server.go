package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitshare/internal/constants"
)

// Server is the habitshared configuration. Values come from an optional YAML
// file and are then overridden by HABITSHARED_* environment variables.
type Server struct {
	Listen   string `yaml:"listen"`
	Database string `yaml:"database"`
	// RealtimeDir is the badger directory for chat logs; empty keeps chat in memory
	RealtimeDir    string        `yaml:"realtime_dir"`
	JWTSecret      string        `yaml:"jwt_secret"`
	PublishableKey string        `yaml:"publishable_key"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	WriteRate      float64       `yaml:"write_rate"`
	WriteBurst     int           `yaml:"write_burst"`
	MaxChatSize    int           `yaml:"max_chat_size"`
	Debug          bool          `yaml:"debug"`
}

// DefaultServer returns the configuration used when nothing is set
func DefaultServer() Server {
	return Server{
		Listen:      constants.DefaultListenAddr,
		Database:    constants.DefaultDatabase,
		TokenTTL:    constants.DefaultTokenTTL,
		WriteRate:   constants.DefaultWriteRate,
		WriteBurst:  constants.DefaultWriteBurst,
		MaxChatSize: constants.DefaultMaxChatSize,
	}
}

// LoadServer reads path (skipped when empty) and applies environment overrides
func LoadServer(path string) (Server, error) {
	loadDotEnv(".env")
	cfg := DefaultServer()

	if path != "" {
		data, err := os.ReadFile(ExpandHome(path))
		if err != nil {
			return Server{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Server{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Server{}, err
	}
	cfg.Database = ExpandHome(cfg.Database)
	cfg.RealtimeDir = ExpandHome(cfg.RealtimeDir)
	return cfg, nil
}

func (c *Server) applyEnv() error {
	if v := os.Getenv(constants.EnvServerListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(constants.EnvServerDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(constants.EnvServerRealtimeDir); v != "" {
		c.RealtimeDir = v
	}
	if v := os.Getenv(constants.EnvServerJWTSecret); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv(constants.EnvServerPubKey); v != "" {
		c.PublishableKey = v
	}
	if v := os.Getenv(constants.EnvServerTokenTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", constants.EnvServerTokenTTL, err)
		}
		c.TokenTTL = d
	}
	if v := os.Getenv(constants.EnvServerDebug); v != "" {
		c.Debug = parseBool(v)
	}
	return nil
}

// Validate checks the settings needed to serve requests
func (c Server) Validate() error {
	var missing []string
	if strings.TrimSpace(c.JWTSecret) == "" {
		missing = append(missing, "jwt_secret ("+constants.EnvServerJWTSecret+")")
	}
	if strings.TrimSpace(c.PublishableKey) == "" {
		missing = append(missing, "publishable_key ("+constants.EnvServerPubKey+")")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("jwt_secret must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if c.WriteRate <= 0 || c.WriteBurst <= 0 {
		return fmt.Errorf("write_rate and write_burst must be positive")
	}
	return nil
}
