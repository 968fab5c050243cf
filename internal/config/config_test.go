package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "TAX_RATE", "FREE_SHIPPING_THRESHOLD", "FLAT_SHIPPING_FEE", "SESSION_TTL_HOURS", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.FreeShippingThreshold != 50000 || cfg.FlatShippingFee != 500 {
		t.Fatalf("unexpected shipping config %+v", cfg)
	}
	if !cfg.TaxRate.Equal(decimal.RequireFromString("0.18")) {
		t.Fatalf("unexpected tax rate %s", cfg.TaxRate)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.SessionTTL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TAX_RATE", "0.05")
	t.Setenv("FLAT_SHIPPING_FEE", "999")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://xoned.in, https://admin.xoned.in,")
	t.Setenv("SESSION_TTL_HOURS", "bogus")

	cfg := FromEnv()
	if !cfg.TaxRate.Equal(decimal.RequireFromString("0.05")) || cfg.FlatShippingFee != 999 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.ShutdownTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.xoned.in" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("invalid ttl should fall back to default, got %s", cfg.SessionTTL)
	}
	if got := cfg.Pricing().Quote(1000).Tax; got != 50 {
		t.Fatalf("expected tax 50 from configured rate, got %d", got)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("CURRENCY", "")
	os.Unsetenv("CURRENCY")
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CURRENCY=USD\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Currency != "USD" {
		t.Fatalf("expected currency from file, got %q", cfg.Currency)
	}
	os.Unsetenv("CURRENCY")
}

func TestLoadMissingFileIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing file ignored, got %v", err)
	}
}
