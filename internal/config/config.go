// internal/config/config.go
//
// Configuration for the quiz server: optional YAML file, environment
// overrides, runnable defaults. Env always wins over the file so deploys can
// tweak a single value without editing config.

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		ClientOrigin string `yaml:"client_origin"`
	} `yaml:"server"`
	DB struct {
		Path string `yaml:"path"`
	} `yaml:"db"`
	Auth struct {
		JWTSecret   string `yaml:"jwt_secret"`
		CookieName  string `yaml:"cookie_name"`
		ExpiresDays int    `yaml:"expires_days"`
	} `yaml:"auth"`
	Quiz struct {
		Secret           string `yaml:"secret"`
		Lives            int    `yaml:"lives"`
		TimeLimitSeconds int    `yaml:"time_limit_seconds"`
	} `yaml:"quiz"`
	LogLevel string `yaml:"log_level"`
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), then applies env overrides and defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; env + defaults carry the day.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overlay(&c.Server.Port, "PORT")
	overlay(&c.Server.ClientOrigin, "CLIENT_ORIGIN")
	overlay(&c.DB.Path, "DB_PATH")
	overlay(&c.Auth.JWTSecret, "JWT_SECRET")
	overlay(&c.Auth.CookieName, "COOKIE_NAME")
	overlay(&c.Quiz.Secret, "QUIZ_SECRET")
	overlay(&c.LogLevel, "LOG_LEVEL")
}

func (c *Config) applyDefaults() {
	def(&c.Server.Port, "8080")
	def(&c.Server.ClientOrigin, "http://localhost:5173")
	def(&c.DB.Path, "./data/quiz.db")
	def(&c.Auth.JWTSecret, "dev_secret_change_me")
	def(&c.Auth.CookieName, "quiz_token")
	if c.Auth.ExpiresDays <= 0 {
		c.Auth.ExpiresDays = 14
	}
	def(&c.Quiz.Secret, "dev_quiz_secret_change_me")
	if c.Quiz.Lives <= 0 {
		c.Quiz.Lives = 3
	}
	if c.Quiz.TimeLimitSeconds <= 0 {
		c.Quiz.TimeLimitSeconds = 30
	}
	def(&c.LogLevel, "info")
}

// TimeLimit returns the per-question deadline as a duration.
func (c Config) TimeLimit() time.Duration {
	return time.Duration(c.Quiz.TimeLimitSeconds) * time.Second
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func def(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}
