package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("session ttl = %v, want 24h", cfg.Session.TTL)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if len(cfg.Rates.Currencies) == 0 {
		t.Error("rates currencies empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("RATES_CURRENCIES", "USD,GBP")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("session ttl = %v, want 1h", cfg.Session.TTL)
	}
	if len(cfg.Rates.Currencies) != 2 {
		t.Errorf("currencies = %v", cfg.Rates.Currencies)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string][2]string{
		"bad port":        {"SERVER_PORT", "70000"},
		"bad level":       {"LOG_LEVEL", "loud"},
		"bad format":      {"LOG_FORMAT", "yaml"},
		"zero ttl":        {"SESSION_TTL", "0s"},
		"zero rate limit": {"RATE_LIMIT_PER_MINUTE", "0"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestMailRequiresAdmin(t *testing.T) {
	t.Setenv("POSTMARK_TOKEN", "tok")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted a mail token without an admin recipient")
	}

	t.Setenv("MAIL_ADMIN_TO", "admin@example.com")
	if _, err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
