package relay

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("relay", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8086" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.StorePath != "proxyengine.db" {
		t.Fatalf("expected default store path, got %q", cfg.StorePath)
	}
	if cfg.GameDataPath != "" {
		t.Fatalf("expected empty game data path, got %q", cfg.GameDataPath)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("PROXYENGINE_RELAY_HTTP_ADDR", "env-relay")
	t.Setenv("PROXYENGINE_STORE_PATH", "env-store")
	t.Setenv("PROXYENGINE_GAME_DATA_PATH", "env-game")

	fs := flag.NewFlagSet("relay", flag.ContinueOnError)
	args := []string{
		"-http-addr", "flag-relay",
		"-store-path", "flag-store",
	}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-relay" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.StorePath != "flag-store" {
		t.Fatalf("expected flag store path, got %q", cfg.StorePath)
	}
	if cfg.GameDataPath != "env-game" {
		t.Fatalf("expected env game data path, got %q", cfg.GameDataPath)
	}
}
