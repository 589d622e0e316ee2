package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadYAMLFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
app:
  AppPort: "9000"
  JWTSecret: file-secret
  AdminSecret: bootstrap
database:
  Driver: sqlite
  DBName: community
redis:
  Enabled: false
uploads:
  MaxMB: 3
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_PORT", "9100")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != "9100" {
		t.Fatalf("env override not applied, port=%s", cfg.AppPort)
	}
	if cfg.JWTSecret != "file-secret" || cfg.AdminSecret != "bootstrap" {
		t.Fatalf("secrets not read from file: %+v", cfg)
	}
	if cfg.DBDriver != "sqlite" || cfg.DBName != "community" {
		t.Fatalf("database section not read: %+v", cfg)
	}
	if cfg.RedisEnabled {
		t.Fatal("redis should be disabled by file")
	}
	if cfg.UploadMaxMB != 3 || cfg.UploadDir != "uploads" {
		t.Fatalf("uploads section/defaults wrong: %+v", cfg)
	}
	if cfg.TokenTTLHours != 168 {
		t.Fatalf("token ttl default = %d", cfg.TokenTTLHours)
	}
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"app": {"JWTSecret": "json-secret", "AllowedOrigins": ["https://a.example", "https://b.example"]}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("JWT_SECRET", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTSecret != "json-secret" {
		t.Fatalf("secret = %q", cfg.JWTSecret)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
	if !cfg.RedisEnabled {
		t.Fatal("redis should default to enabled")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error without JWT secret")
	}
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("REDIS_PORT", "not-a-port")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for invalid REDIS_PORT")
	}
}

func TestInitDatabaseSQLite(t *testing.T) {
	cfg := AppConfig{DBDriver: "sqlite", DatabaseURI: filepath.Join(t.TempDir(), "test.db"), LogLevel: "silent"}
	type probe struct {
		ID   uint
		Name string
	}
	db, err := InitDatabase(cfg, &probe{})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !db.Migrator().HasTable(&probe{}) {
		t.Fatal("probe table not migrated")
	}
}

func TestInitDatabaseUnknownDriver(t *testing.T) {
	if _, err := InitDatabase(AppConfig{DBDriver: "oracle"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
