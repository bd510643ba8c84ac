package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "claude" {
		t.Fatalf("expected default provider claude, got %q", cfg.Provider)
	}
	if cfg.MaxTurns != 10 {
		t.Fatalf("expected default max turns 10, got %d", cfg.MaxTurns)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".krillclaw.json")
	if err := os.WriteFile(path, []byte(`{"model":"gpt-4o","provider":"openai"}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "gpt-4o" || cfg.Provider != "openai" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestEnvOverlayOpenAIKeySelectsProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("KRILLCLAW_PROVIDER", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "sk-test" {
		t.Fatalf("expected api key from OPENAI_API_KEY, got %q", cfg.APIKey)
	}
	if cfg.Provider != "openai" {
		t.Fatalf("expected provider openai, got %q", cfg.Provider)
	}
}

func TestValidateRejectsMissingKey(t *testing.T) {
	cfg := Default()
	cfg.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestValidateOllamaNeedsNoKey(t *testing.T) {
	cfg := Default()
	cfg.Provider = "ollama"
	cfg.APIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Streaming {
		t.Fatal("expected streaming forced off for ollama")
	}
}
