package draft

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/abhisek/ipquiz/internal/quiz"
)

// Validator checks a drafted question. Implementations are stateless.
type Validator interface {
	Name() string
	Validate(q quiz.Question, in Input) *ValidationError
}

// ValidationError explains why a draft was rejected.
type ValidationError struct {
	Validator string
	Message   string
	// Retryable is set when asking again is likely to fix it.
	Retryable bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

const (
	maxPromptLen    = 2000
	maxOptionLen    = 200
	maxOptions      = 6
	maxReferenceLen = 2000
)

// StructuralValidator enforces size limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q quiz.Question, _ Input) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}
	if len(q.Prompt) > maxPromptLen {
		return fail(fmt.Sprintf("prompt exceeds %d characters", maxPromptLen))
	}
	if c, ok := q.Choice(); ok {
		if len(c.Options) > maxOptions {
			return fail(fmt.Sprintf("more than %d options", maxOptions))
		}
		for i, opt := range c.Options {
			if len(opt) > maxOptionLen {
				return fail(fmt.Sprintf("option %d exceeds %d characters", i+1, maxOptionLen))
			}
		}
	}
	if o, ok := q.Open(); ok && len(o.Reference) > maxReferenceLen {
		return fail(fmt.Sprintf("reference exceeds %d characters", maxReferenceLen))
	}
	return nil
}

// QuizValidator applies the same rules as saving a question by hand.
type QuizValidator struct{}

func (v *QuizValidator) Name() string { return "quiz" }

func (v *QuizValidator) Validate(q quiz.Question, _ Input) *ValidationError {
	err := q.Validate()
	if err == nil {
		return nil
	}
	var qe *quiz.ValidationError
	if errors.As(err, &qe) {
		// Topic and level come from the caller; the model cannot fix them.
		retry := qe.Field != "topic" && qe.Field != "level"
		return &ValidationError{Validator: v.Name(), Message: qe.Field + ": " + qe.Message, Retryable: retry}
	}
	return &ValidationError{Validator: v.Name(), Message: err.Error()}
}

// DuplicateValidator rejects a prompt that matches an existing one after
// case folding and collapsing punctuation and whitespace.
type DuplicateValidator struct{}

func (v *DuplicateValidator) Name() string { return "duplicate" }

func (v *DuplicateValidator) Validate(q quiz.Question, in Input) *ValidationError {
	key := promptKey(q.Prompt)
	for _, existing := range in.Existing {
		if promptKey(existing) == key {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "prompt duplicates an existing question",
				Retryable: true,
			}
		}
	}
	return nil
}

func promptKey(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
