package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nkralj/quizserver/internal/config"
)

func TestDefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port=%q", cfg.Server.Port)
	}
	if cfg.Quiz.Lives != 3 || cfg.Quiz.TimeLimitSeconds != 30 {
		t.Fatalf("quiz defaults: %+v", cfg.Quiz)
	}
	if cfg.TimeLimit() != 30*time.Second {
		t.Fatalf("time limit=%v", cfg.TimeLimit())
	}
}

func TestFileValuesAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "server:\n  port: \"9000\"\nquiz:\n  lives: 5\n  time_limit_seconds: 10\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "9100")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9100" {
		t.Fatalf("env should win over file, got port=%q", cfg.Server.Port)
	}
	if cfg.Quiz.Lives != 5 || cfg.TimeLimit() != 10*time.Second {
		t.Fatalf("file values not applied: %+v", cfg.Quiz)
	}
}

func TestMissingFileIsNotAnError(t *testing.T) {
	cfg, err := config.Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DB.Path == "" {
		t.Fatal("defaults not applied")
	}
}
