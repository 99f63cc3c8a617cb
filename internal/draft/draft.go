// Package draft asks a language model for new quiz questions and topic
// hints, and rejects drafts that would not pass as hand-written content.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/ipquiz/internal/llm"
	"github.com/abhisek/ipquiz/internal/quiz"
)

// Input is everything a draft is conditioned on.
type Input struct {
	Topic string
	Kind  quiz.Kind
	Level quiz.Level
	// Hint is the topic hint, if any.
	Hint string
	// Guidance is free text from the author, e.g. "focus on subnetting".
	Guidance string
	// Existing holds the prompts already in the topic.
	Existing []string

	rejections []string
}

// Config controls a Drafter.
type Config struct {
	// Validators run in order; the first failure rejects the draft.
	Validators  []Validator
	MaxTokens   int
	Temperature float64
	// MaxExisting caps how many existing prompts go into the request.
	MaxExisting int
	// Attempts is how many drafts to request before giving up on
	// retryable rejections.
	Attempts int
}

func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&QuizValidator{},
			&DuplicateValidator{},
		},
		MaxTokens:   1024,
		Temperature: 0.7,
		MaxExisting: 20,
		Attempts:    2,
	}
}

// Drafter produces questions with an llm.Provider.
type Drafter struct {
	provider llm.Provider
	config   Config
	log      logrus.FieldLogger
}

func New(provider llm.Provider, cfg Config, log logrus.FieldLogger) *Drafter {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &Drafter{provider: provider, config: cfg, log: log}
}

// Draft returns a question that passed every validator. It has a fresh ID
// and is not saved anywhere.
func (d *Drafter) Draft(ctx context.Context, in Input) (quiz.Question, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return quiz.Question{}, errors.New("topic is required")
	}
	if !in.Kind.Valid() {
		return quiz.Question{}, fmt.Errorf("unknown kind %q", in.Kind)
	}
	if !in.Level.Valid() {
		return quiz.Question{}, fmt.Errorf("unknown level %q", in.Level)
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeDraftQuestion)

	var lastErr error
	for attempt := 1; attempt <= d.config.Attempts; attempt++ {
		q, err := d.once(ctx, in)
		if err == nil {
			return q, nil
		}
		lastErr = err

		var ve *ValidationError
		if !errors.As(err, &ve) || !ve.Retryable {
			return quiz.Question{}, err
		}
		d.log.WithFields(logrus.Fields{
			"topic":     in.Topic,
			"attempt":   attempt,
			"validator": ve.Validator,
		}).Info("Draft rejected")
		in.rejections = append(in.rejections, ve.Message)
	}
	return quiz.Question{}, lastErr
}

func (d *Drafter) once(ctx context.Context, in Input) (quiz.Question, error) {
	req := llm.Ask(systemPrompt, buildUserMessage(in, d.config.MaxExisting), QuestionSchema, d.config.MaxTokens)
	req.Temperature = d.config.Temperature

	resp, err := d.provider.Generate(ctx, req)
	if err != nil {
		return quiz.Question{}, fmt.Errorf("draft question: %w", err)
	}

	var out output
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return quiz.Question{}, fmt.Errorf("parse draft: %w", err)
	}

	q := quiz.New(in.Topic, in.Kind, in.Level, out.Prompt)
	switch b := q.Body.(type) {
	case *quiz.Choice:
		b.Options = out.Options
		b.Correct = out.Correct
		b.Multi = out.Multiple || len(out.Correct) > 1
	case *quiz.Open:
		b.Reference = out.Reference
	}
	q.Normalize()

	for _, v := range d.config.Validators {
		if verr := v.Validate(q, in); verr != nil {
			return quiz.Question{}, verr
		}
	}
	return q, nil
}

// DraftHint writes a study hint for topic given the questions in it.
func (d *Drafter) DraftHint(ctx context.Context, topic string, questions []quiz.Question) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeDraftHint)
	req := llm.Ask(hintSystemPrompt, buildHintMessage(topic, questions, d.config.MaxExisting), HintSchema, 256)

	resp, err := d.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("draft hint: %w", err)
	}
	var out struct {
		Hint string `json:"hint"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse hint: %w", err)
	}
	hint := strings.TrimSpace(out.Hint)
	if hint == "" {
		return "", errors.New("model returned an empty hint")
	}
	return hint, nil
}
