package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activitygen.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
base_url: http://localhost:7420
token: tok
secret: sec
actor: actor-1
`)
	cfg, interval, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if interval != time.Second {
		t.Fatalf("unexpected interval: %s", interval)
	}
	if cfg.BatchSize != 10 || cfg.Source != "mise/activitygen" || len(cfg.Recipes) != 3 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigRejectsMissingFields(t *testing.T) {
	path := writeConfig(t, `
base_url: http://localhost:7420
token: tok
interval: 2s
`)
	if _, _, err := loadConfig(path); err == nil {
		t.Fatalf("expected missing secret/actor to be rejected")
	}

	path = writeConfig(t, `
base_url: http://localhost:7420
token: tok
secret: sec
actor: actor-1
interval: -1s
`)
	if _, _, err := loadConfig(path); err == nil {
		t.Fatalf("expected negative interval to be rejected")
	}
}

func TestRecipeSplitsEntry(t *testing.T) {
	id, name := recipe(" r-9 : Tom yum ")
	if id != "r-9" || name != "Tom yum" {
		t.Fatalf("unexpected split: %q %q", id, name)
	}
	id, name = recipe("r-10")
	if id != "r-10" || name != "" {
		t.Fatalf("unexpected split without name: %q %q", id, name)
	}
}
