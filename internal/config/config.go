package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 18790
	DefaultBufSize     = 100
	DefaultMaxSessions = 256
	DefaultPackFile    = "pack.yaml"
)

type Config struct {
	Game     GameConfig     `json:"game"`
	Channels ChannelsConfig `json:"channels"`
	Gateway  GatewayConfig  `json:"gateway"`
}

type GameConfig struct {
	// Seed makes every session reproducible when non-zero.
	Seed int64 `json:"seed,omitempty" env:"APTNAME_SEED"`
	// Pack is a YAML data pack overriding the built-in rules and word pools.
	Pack        string `json:"pack,omitempty" env:"APTNAME_PACK"`
	MaxSessions int    `json:"maxSessions" env:"APTNAME_MAX_SESSIONS"`
}

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	WebUI    WebUIConfig    `json:"webui"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled" env:"APTNAME_TELEGRAM_ENABLED"`
	Token     string   `json:"token" env:"APTNAME_TELEGRAM_TOKEN"`
	AllowFrom []string `json:"allowFrom" env:"APTNAME_TELEGRAM_ALLOW_FROM" envSeparator:","`
	Proxy     string   `json:"proxy,omitempty" env:"APTNAME_TELEGRAM_PROXY"`
}

type WebUIConfig struct {
	Enabled   bool     `json:"enabled" env:"APTNAME_WEBUI_ENABLED"`
	AllowFrom []string `json:"allowFrom"`
}

type GatewayConfig struct {
	Host    string `json:"host" env:"APTNAME_HOST"`
	Port    int    `json:"port" env:"APTNAME_PORT"`
	BufSize int    `json:"bufSize,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Game: GameConfig{
			MaxSessions: DefaultMaxSessions,
		},
		Channels: ChannelsConfig{
			WebUI: WebUIConfig{Enabled: true},
		},
		Gateway: GatewayConfig{
			Host:    DefaultHost,
			Port:    DefaultPort,
			BufSize: DefaultBufSize,
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".aptname")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// PackPath resolves the configured data pack. A relative path is taken from
// the config directory.
func (c *Config) PackPath() string {
	p := c.Game.Pack
	if p == "" {
		p = DefaultPackFile
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ConfigDir(), p)
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = DefaultPort
	}
	if cfg.Gateway.BufSize <= 0 {
		cfg.Gateway.BufSize = DefaultBufSize
	}
	if cfg.Game.MaxSessions <= 0 {
		cfg.Game.MaxSessions = DefaultMaxSessions
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
