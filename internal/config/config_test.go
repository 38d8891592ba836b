package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SOCIAL_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{
		"SOCIAL_PORT", "SOCIAL_ENV", "SOCIAL_STORE", "SOCIAL_DATABASE_URL", "SOCIAL_JWT_SECRET",
		"SOCIAL_SESSION_TTL", "SOCIAL_BCRYPT_COST", "SOCIAL_CORS_ORIGINS", "SOCIAL_S3_BUCKET",
			"SOCIAL_TRUST_PROXY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("expected default port 8080 got %d", cfg.AppPort)
	}
	if cfg.Environment != EnvDevelopment {
		t.Fatalf("expected development environment got %q", cfg.Environment)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("expected one hour session ttl got %s", cfg.SessionTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10 got %d", cfg.BcryptCost)
	}
	if cfg.JWTSecret != "" {
		t.Fatal("expected no compiled-in jwt secret")
	}
	if cfg.ObjectStore.Enabled() {
		t.Fatal("expected object store to be disabled without a bucket")
	}
	if cfg.TrustProxyHeaders {
		t.Fatal("expected forwarding headers to be untrusted by default")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SOCIAL_PORT", "9090")
	t.Setenv("SOCIAL_STORE", "memory")
	t.Setenv("SOCIAL_SESSION_TTL", "30m")
	t.Setenv("SOCIAL_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SOCIAL_TRUST_PROXY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 9090 || cfg.Store != StoreMemory || cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins got %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.TrustProxyHeaders {
		t.Fatal("expected SOCIAL_TRUST_PROXY to be applied")
	}
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SOCIAL_ENV", "production")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SOCIAL_JWT_SECRET") {
		t.Fatalf("expected missing secret error got %v", err)
	}

	t.Setenv("SOCIAL_JWT_SECRET", strings.Repeat("s", 32))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load with secret: %v", err)
	}
	if !cfg.Production() {
		t.Fatal("expected production config")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Environment: EnvDevelopment,
		Store:       StorePostgres,
		DatabaseURL: "postgres://localhost/social",
		SessionTTL:  time.Hour,
		BcryptCost:  10,
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknownEnv", func(c *Config) { c.Environment = "staging" }},
		{"unknownStore", func(c *Config) { c.Store = "mongo" }},
		{"missingDatabaseURL", func(c *Config) { c.DatabaseURL = "" }},
		{"memoryInProduction", func(c *Config) {
			c.Environment = EnvProduction
			c.Store = StoreMemory
			c.JWTSecret = strings.Repeat("s", 32)
		}},
		{"zeroTTL", func(c *Config) { c.SessionTTL = 0 }},
		{"bcryptCost", func(c *Config) { c.BcryptCost = 2 }},
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to be valid: %v", err)
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
