// Package config loads the server configuration from a YAML file with
// ${VAR} expansion and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	Weather   WeatherConfig   `yaml:"weather"`
	Nutrition NutritionConfig `yaml:"nutrition"`
}

type AppConfig struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
	Workers  int    `yaml:"workers"`
	Timeout  int    `yaml:"timeout"` // long polling, seconds
}

type GRPCConfig struct {
	Addr       string `yaml:"addr"`
	TLSCert    string `yaml:"tls_cert"`
	TLSKey     string `yaml:"tls_key"`
	Reflection bool   `yaml:"reflection"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConnections int32  `yaml:"max_connections"`
	Migrate        bool   `yaml:"migrate"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type SessionConfig struct {
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

type WeatherConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type NutritionConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns a configuration that runs a single in-memory instance.
func Default() Config {
	return Config{
		App:       AppConfig{Name: "fittrack", Timezone: "UTC"},
		Logging:   LoggingConfig{Level: "info"},
		Telegram:  TelegramConfig{Workers: 4, Timeout: 60},
		GRPC:      GRPCConfig{Addr: ":8443"},
		HTTP:      HTTPConfig{Addr: ":8080"},
		Database:  DatabaseConfig{MaxConnections: 10, Migrate: true},
		Redis:     RedisConfig{PoolSize: 10},
		Session:   SessionConfig{KeyPrefix: "fittrack:session:"},
		Weather:   WeatherConfig{Timeout: 5 * time.Second},
		Nutrition: NutritionConfig{Timeout: 10 * time.Second},
	}
}

// Load reads the file at path over the defaults. A .env file next to the
// process, if present, is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse expands environment variables in data and decodes it over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}
	if c.Telegram.Workers < 1 {
		return errors.New("telegram.workers must be at least 1")
	}
	if (c.GRPC.TLSCert == "") != (c.GRPC.TLSKey == "") {
		return errors.New("grpc.tls_cert and grpc.tls_key must be set together")
	}
	if c.Telegram.BotToken == "" && c.GRPC.Addr == "" {
		return errors.New("nothing to serve: set telegram.bot_token or grpc.addr")
	}
	return nil
}

// Location resolves App.Timezone; empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.App.Timezone)
}
