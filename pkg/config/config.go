// Package config loads KrillClaw's runtime configuration from a JSON
// file, then overlays environment variables, then overlays CLI flags —
// the same three-layer precedence and caarlos0/env struct-tag style the
// teacher's pkg/config/config.go uses, cut down to the single flat
// Config spec §3 defines (no channel/gateway/heartbeat sub-configs: this
// runtime has none of those surfaces).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config holds every option spec §3/§6 recognises.
type Config struct {
	APIKey   string `json:"api_key,omitempty" env:"KRILLCLAW_API_KEY"`
	Provider string `json:"provider" env:"KRILLCLAW_PROVIDER"`
	Model    string `json:"model" env:"KRILLCLAW_MODEL"`
	BaseURL  string `json:"base_url" env:"KRILLCLAW_BASE_URL"`

	MaxTokens        int `json:"max_tokens" env:"KRILLCLAW_MAX_TOKENS"`
	MaxContextTokens int `json:"max_context_tokens"`
	MaxTurns         int `json:"max_turns"`

	SystemPrompt string `json:"system_prompt" env:"KRILLCLAW_SYSTEM_PROMPT"`
	Streaming    bool   `json:"streaming"`

	Transport  string `json:"transport" env:"KRILLCLAW_TRANSPORT"`
	SerialPort string `json:"serial_port" env:"KRILLCLAW_SERIAL_PORT"`
	SerialBaud int     `json:"serial_baud"`
	BLEDevice  string `json:"ble_device" env:"KRILLCLAW_BLE_DEVICE"`

	// AnthropicAPIKey/OpenAIAPIKey are read-only overlay inputs (spec §6):
	// ANTHROPIC_API_KEY sets APIKey for the claude provider; OPENAI_API_KEY
	// sets APIKey and additionally selects the openai provider when no
	// config file, environment variable, or CLI flag chose one explicitly.
	// Never round-tripped through the config file.
	AnthropicAPIKey string `json:"-" env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `json:"-" env:"OPENAI_API_KEY"`
}

// ErrMissingAPIKey is returned by Validate when no key was supplied for a
// provider that requires one (every provider except Ollama).
var ErrMissingAPIKey = errors.New("config: missing API key")

// Default returns the built-in defaults, applied before the file layer.
func Default() *Config {
	return &Config{
		Provider:         "claude",
		Model:            "claude-3-5-sonnet-latest",
		MaxTokens:        4096,
		MaxContextTokens: 180000,
		MaxTurns:         10,
		Streaming:        true,
		Transport:        "http",
		SerialBaud:       115200,
	}
}

// Load reads path (typically .krillclaw.json in the CWD), overlays
// environment variables, and returns the merged config. A missing file
// is not an error — the defaults plus environment overlay still apply.
//
// Provider selection from OPENAI_API_KEY only kicks in when nothing else
// chose a provider: Default's "claude" is a fallback, not a choice, so
// it must not be mistaken for one when deciding whether to infer
// "openai" from the presence of an OpenAI key.
func Load(path string) (*Config, error) {
	cfg := Default()
	providerExplicit := false

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		var probe struct {
			Provider *string `json:"provider"`
		}
		if err := json.Unmarshal(data, &probe); err == nil && probe.Provider != nil {
			providerExplicit = true
		}
	}
	if os.Getenv("KRILLCLAW_PROVIDER") != "" {
		providerExplicit = true
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if !providerExplicit && cfg.Provider != "ollama" && cfg.OpenAIAPIKey != "" {
		cfg.Provider = "openai"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.OpenAIAPIKey != "" {
		cfg.APIKey = cfg.OpenAIAPIKey
	}
	if cfg.AnthropicAPIKey != "" {
		cfg.APIKey = cfg.AnthropicAPIKey
	}
	if cfg.Provider == "ollama" {
		cfg.Streaming = false
	}
	return nil
}

// Validate reports ErrMissingAPIKey when the selected provider needs a
// key it doesn't have. Called once, after the CLI overlay, before the
// loop starts (spec §6: exit code 1 on fatal config errors).
func (c *Config) Validate() error {
	if c.Provider != "ollama" && c.APIKey == "" {
		return fmt.Errorf("%w: provider %q requires api_key (set KRILLCLAW_API_KEY, ANTHROPIC_API_KEY, or OPENAI_API_KEY)", ErrMissingAPIKey, c.Provider)
	}
	if c.Provider == "ollama" {
		c.Streaming = false
	}
	return nil
}
