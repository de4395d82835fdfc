package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadParsesDurationsAndCounts(t *testing.T) {
	p := writeConfig(t, `
server:
  address: 127.0.0.1
  port: 9090
history:
  capacity: 1k
webhook:
  url: http://hooks.local/wa
  rps: 2.5
  burst: 4
groups:
  ttl: "300s"
session:
  reconnect_delay: 5
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Addr(); got != "127.0.0.1:9090" {
		t.Fatalf("Addr() = %q", got)
	}
	if got := cfg.HistoryCapacity(); got != 1000 {
		t.Fatalf("HistoryCapacity() = %d, want 1000", got)
	}
	if got := cfg.GroupTTL(); got != 300*time.Second {
		t.Fatalf("GroupTTL() = %v", got)
	}
	// bare numbers are seconds
	if got := cfg.ReconnectDelay(); got != 5*time.Second {
		t.Fatalf("ReconnectDelay() = %v", got)
	}
	if cfg.Webhook.RPS != 2.5 || cfg.Webhook.Burst != 4 {
		t.Fatalf("webhook = %+v", cfg.Webhook)
	}
}

func TestDefaultsWhenUnset(t *testing.T) {
	cfg := &Config{}
	if got := cfg.Addr(); got != "0.0.0.0:8080" {
		t.Fatalf("Addr() = %q", got)
	}
	if got := cfg.HistoryCapacity(); got != DefaultHistoryCapacity {
		t.Fatalf("HistoryCapacity() = %d", got)
	}
	if got := cfg.GroupTTL(); got != DefaultGroupTTL {
		t.Fatalf("GroupTTL() = %v", got)
	}
	if got := cfg.ReconnectDelay(); got != DefaultReconnectDelay {
		t.Fatalf("ReconnectDelay() = %v", got)
	}
}

func TestEnvOverridesConfig(t *testing.T) {
	t.Setenv("WABRIDGE_ADDR", "10.0.0.1:9999")
	t.Setenv("WABRIDGE_WEBHOOK_URL", "http://env.local/hook")
	t.Setenv("WABRIDGE_HISTORY_CAPACITY", "50")
	t.Setenv("WABRIDGE_GROUP_TTL", "90s")
	t.Setenv("WABRIDGE_LOG_LEVEL", "debug")

	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Webhook.URL = "http://file.local/hook"

	if !LoadEnvOverrides(cfg) {
		t.Fatal("expected env to be reported as used")
	}
	if got := cfg.Addr(); got != "10.0.0.1:9999" {
		t.Fatalf("Addr() = %q", got)
	}
	if cfg.Webhook.URL != "http://env.local/hook" {
		t.Fatalf("webhook url = %q", cfg.Webhook.URL)
	}
	if cfg.HistoryCapacity() != 50 {
		t.Fatalf("capacity = %d", cfg.HistoryCapacity())
	}
	if cfg.GroupTTL() != 90*time.Second {
		t.Fatalf("ttl = %v", cfg.GroupTTL())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadEffectiveRejectsMalformedFile(t *testing.T) {
	p := writeConfig(t, "server: [this is not\n  a mapping\n")
	if _, _, err := LoadEffective(p); err == nil {
		t.Fatal("malformed config must not be silently replaced by defaults")
	}
}

func TestLoadEffectiveToleratesMissingFile(t *testing.T) {
	cfg, envUsed, err := LoadEffective(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadEffective: %v", err)
	}
	if envUsed {
		t.Fatal("no env set, envUsed should be false")
	}
	if cfg.HistoryCapacity() != DefaultHistoryCapacity {
		t.Fatalf("capacity = %d", cfg.HistoryCapacity())
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("WABRIDGE_CONFIG", "/etc/wabridge.yaml")
	if got := ResolveConfigPath("./flagged.yaml", true); got != "./flagged.yaml" {
		t.Fatalf("flag set: %q", got)
	}
	if got := ResolveConfigPath("./config.yaml", false); got != "/etc/wabridge.yaml" {
		t.Fatalf("env fallback: %q", got)
	}
}
