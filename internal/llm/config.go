package llm

import (
	"fmt"
	"os"
	"time"
)

// Backend names accepted in Config.Provider.
const (
	BackendAnthropic  = "anthropic"
	BackendOpenAI     = "openai"
	BackendGemini     = "gemini"
	BackendOpenRouter = "openrouter"
	BackendMock       = "mock"
)

// Config selects and configures a backend.
type Config struct {
	Provider string

	Anthropic  BackendConfig
	OpenAI     BackendConfig
	Gemini     BackendConfig
	OpenRouter BackendConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// BackendConfig is the per-backend credential and model. BaseURL is
// honoured by the OpenAI-compatible backends and by tests.
type BackendConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig uses the cheapest model of every backend; drafting one
// question does not need more.
func DefaultConfig() Config {
	return Config{
		Provider:   BackendAnthropic,
		Anthropic:  BackendConfig{Model: "claude-haiku"},
		OpenAI:     BackendConfig{Model: "gpt-4o-mini"},
		Gemini:     BackendConfig{Model: "gemini-flash"},
		OpenRouter: BackendConfig{Model: "google/gemini-2.0-flash-001", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// envKeys names the variables read for each backend.
var envKeys = map[string]struct{ key, model, vendorKey string }{
	BackendAnthropic:  {"IPQUIZ_ANTHROPIC_API_KEY", "IPQUIZ_ANTHROPIC_MODEL", "ANTHROPIC_API_KEY"},
	BackendOpenAI:     {"IPQUIZ_OPENAI_API_KEY", "IPQUIZ_OPENAI_MODEL", "OPENAI_API_KEY"},
	BackendGemini:     {"IPQUIZ_GEMINI_API_KEY", "IPQUIZ_GEMINI_MODEL", "GEMINI_API_KEY"},
	BackendOpenRouter: {"IPQUIZ_OPENROUTER_API_KEY", "IPQUIZ_OPENROUTER_MODEL", "OPENROUTER_API_KEY"},
}

// discoveryOrder is the order vendor keys are probed when no backend is
// named explicitly.
var discoveryOrder = []string{BackendGemini, BackendOpenAI, BackendAnthropic, BackendOpenRouter}

// ConfigFromEnv reads IPQUIZ_LLM_PROVIDER and the per-backend variables.
// Without IPQUIZ_LLM_PROVIDER the first backend whose key is set wins, the
// IPQUIZ_ prefixed key before the vendor's own.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for name, k := range envKeys {
		bc := cfg.backend(name)
		bc.APIKey = firstEnv(k.key, k.vendorKey)
		if m := os.Getenv(k.model); m != "" {
			bc.Model = m
		}
	}
	if u := os.Getenv("IPQUIZ_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if p := os.Getenv("IPQUIZ_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
		return cfg
	}
	for _, name := range discoveryOrder {
		if cfg.backend(name).APIKey != "" {
			cfg.Provider = name
			break
		}
	}
	return cfg
}

func (c *Config) backend(name string) *BackendConfig {
	switch name {
	case BackendAnthropic:
		return &c.Anthropic
	case BackendOpenAI:
		return &c.OpenAI
	case BackendGemini:
		return &c.Gemini
	case BackendOpenRouter:
		return &c.OpenRouter
	}
	return nil
}

// Validate checks that the selected backend has a key.
func (c Config) Validate() error {
	if c.Provider == BackendMock {
		return nil
	}
	k, ok := envKeys[c.Provider]
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.backend(c.Provider).APIKey == "" {
		return fmt.Errorf("%s (or %s) is required for the %s provider", k.key, k.vendorKey, c.Provider)
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
