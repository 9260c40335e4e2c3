package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Port:           "8000",
		Env:            "development",
		StorageBackend: "postgres",
		DatabaseURL:    "postgres://localhost/clinic",
		SheetPath:      "appointments.xlsx",
		TokenTTLHours:  12,
	}
}

func TestValidate_PostgresRequiresDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_SheetRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "sheet"
	cfg.SheetPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing SHEET_PATH")
	}
}

func TestValidate_SheetBackendOK(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "sheet"
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "spreadsheet"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestValidate_ProductionRequiresJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}
	cfg.JWTSecret = strings.Repeat("s", 32)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = "too-short"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short JWT_SECRET")
	}
}

func TestValidate_TokenTTL(t *testing.T) {
	cfg := validConfig()
	cfg.TokenTTLHours = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero TOKEN_TTL_HOURS")
	}
}

func TestIsDev(t *testing.T) {
	cfg := validConfig()
	if !cfg.IsDev() {
		t.Error("expected IsDev true for ENV=development")
	}
	cfg.Env = "production"
	if cfg.IsDev() {
		t.Error("expected IsDev false for ENV=production")
	}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction true")
	}
}
