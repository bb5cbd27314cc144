// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

environment: "production"

database:
  path: "./test.db"

auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
  token_ttl: "90m"

ratelimit:
  max: 50
  window: "30m"
  redis_addr: "localhost:6379"

login:
  rps: 2
  burst: 10

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Auth.TokenTTL != 90*time.Minute {
		t.Errorf("Auth.TokenTTL = %v, want 90m", cfg.Auth.TokenTTL)
	}
	if cfg.RateLimit.Max != 50 {
		t.Errorf("RateLimit.Max = %d, want 50", cfg.RateLimit.Max)
	}
	if cfg.RateLimit.Window != 30*time.Minute {
		t.Errorf("RateLimit.Window = %v, want 30m", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.RedisAddr != "localhost:6379" {
		t.Errorf("RateLimit.RedisAddr = %q", cfg.RateLimit.RedisAddr)
	}
	if cfg.Login.RPS != 2 || cfg.Login.Burst != 10 {
		t.Errorf("Login = %+v, want rps=2 burst=10", cfg.Login)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"
database:
  path: "./test.db"
auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Environment != EnvDevelopment {
		t.Errorf("Environment = %q, want %q", cfg.Environment, EnvDevelopment)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.RateLimit.Max != 100 {
		t.Errorf("RateLimit.Max = %d, want 100", cfg.RateLimit.Max)
	}
	if cfg.RateLimit.Window != time.Hour {
		t.Errorf("RateLimit.Window = %v, want 1h", cfg.RateLimit.Window)
	}
	if cfg.Login.RPS != 1 || cfg.Login.Burst != 5 {
		t.Errorf("Login = %+v, want rps=1 burst=5", cfg.Login)
	}
}

// TestLoad_InitScaffoldShape loads a file in the exact layout the
// `trailhead init` scaffold writes (unquoted scalars, same section keys)
// with non-default limiter values, so a key drift between the scaffold
// and the struct tags surfaces as defaults sneaking back in.
func TestLoad_InitScaffoldShape(t *testing.T) {
	path := writeConfig(t, `server:
  http_addr: ":8080"

environment: development

database:
  path: ./trailhead.db

auth:
  jwt_secret: a-test-secret-that-is-32-bytes!!
  token_ttl: 24h

ratelimit:
  max: 42
  window: 30m

login:
  rps: 1
  burst: 5

logging:
  level: info
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RateLimit.Max != 42 {
		t.Errorf("RateLimit.Max = %d, want 42 (section did not bind)", cfg.RateLimit.Max)
	}
	if cfg.RateLimit.Window != 30*time.Minute {
		t.Errorf("RateLimit.Window = %v, want 30m (section did not bind)", cfg.RateLimit.Window)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TRAILHEAD_TEST_SECRET", "an-env-provided-secret-32-bytes!")

	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"
database:
  path: "./test.db"
auth:
  jwt_secret: "${TRAILHEAD_TEST_SECRET}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "an-env-provided-secret-32-bytes!" {
		t.Errorf("Auth.JWTSecret = %q, want expanded env value", cfg.Auth.JWTSecret)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing http_addr",
			content: `
database:
  path: "./test.db"
auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
`,
		},
		{
			name: "missing database path",
			content: `
server:
  http_addr: "127.0.0.1:8080"
auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
`,
		},
		{
			name: "short jwt secret",
			content: `
server:
  http_addr: "127.0.0.1:8080"
database:
  path: "./test.db"
auth:
  jwt_secret: "too-short"
`,
		},
		{
			name: "bad environment",
			content: `
server:
  http_addr: "127.0.0.1:8080"
environment: "staging"
database:
  path: "./test.db"
auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
`,
		},
		{
			name: "bad window duration",
			content: `
server:
  http_addr: "127.0.0.1:8080"
database:
  path: "./test.db"
auth:
  jwt_secret: "a-test-secret-that-is-32-bytes!!"
ratelimit:
  window: "one hour"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load() should have returned an error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should have returned an error for a missing file")
	}
}
