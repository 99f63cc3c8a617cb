package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/ipquiz/internal/store"
)

// Recorder logs every call and appends it to the event store.
type Recorder struct {
	inner   Provider
	backend string
	events  store.EventRepo
	log     logrus.FieldLogger
}

// WithRecorder wraps p. events may be nil, in which case calls are only
// logged.
func WithRecorder(p Provider, backend string, events store.EventRepo, log logrus.FieldLogger) Provider {
	return &Recorder{inner: p, backend: backend, events: events, log: log}
}

func (r *Recorder) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    r.backend,
		Model:       r.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: renderRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	entry := r.log.WithFields(logrus.Fields{
		"provider":   data.Provider,
		"model":      data.Model,
		"purpose":    data.Purpose,
		"latency_ms": data.LatencyMs,
		"tokens_in":  data.InputTokens,
		"tokens_out": data.OutputTokens,
	})
	if err != nil {
		entry.WithError(err).Warn("LLM call failed")
	} else {
		entry.Debug("LLM call")
	}

	if r.events != nil {
		if logErr := r.events.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
			r.log.WithError(logErr).Warn("Failed to record LLM call")
		}
	}
	return resp, err
}

func (r *Recorder) ModelID() string {
	return r.inner.ModelID()
}

// renderRequest is the human-readable request text kept with each event.
func renderRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
