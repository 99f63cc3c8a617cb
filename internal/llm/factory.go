package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/ipquiz/internal/store"
)

// NewProvider builds the configured backend wrapped as
// caller → timeout → retry → recorder → backend. events may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log logrus.FieldLogger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case BackendAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case BackendOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case BackendOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case BackendGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case BackendMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	log.WithFields(logrus.Fields{"provider": cfg.Provider, "model": base.ModelID()}).Debug("LLM provider ready")

	p := WithRetry(WithRecorder(base, cfg.Provider, events, log), cfg.Retry, log)
	return WithTimeout(p, cfg.Timeout), nil
}

type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout bounds every Generate call. A zero timeout returns p as is.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &timeoutProvider{inner: p, timeout: timeout}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *timeoutProvider) ModelID() string { return t.inner.ModelID() }
