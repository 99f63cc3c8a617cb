package quiz

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Question is one assessable unit in the bank.
type Question struct {
	// ID is assigned at creation and never changes.
	ID string

	// Topic groups questions (the "IP"). Not unique.
	Topic string

	Level Level

	// Prompt is markdown shown to the player.
	Prompt string

	// Body holds the kind-specific fields. Exactly one of *Choice or *Open.
	Body Body
}

// Body is the kind-specific part of a question.
type Body interface {
	Kind() Kind
	clone() Body
}

// Choice is the body of a multiple-choice question.
type Choice struct {
	Options []string
	// Correct holds indices into Options.
	Correct []int
	// Multi allows more than one correct index. When false, Normalize
	// retains only the lowest one.
	Multi bool
}

func (c *Choice) Kind() Kind { return KindMultipleChoice }

func (c *Choice) clone() Body {
	return &Choice{
		Options: append([]string(nil), c.Options...),
		Correct: append([]int(nil), c.Correct...),
		Multi:   c.Multi,
	}
}

// IsCorrect reports whether index i is one of the correct options.
func (c *Choice) IsCorrect(i int) bool {
	for _, idx := range c.Correct {
		if idx == i {
			return true
		}
	}
	return false
}

// Open is the body shared by the manually graded kinds.
type Open struct {
	Format Kind
	// Reference is an optional markdown model answer.
	Reference string
}

func (o *Open) Kind() Kind { return o.Format }

func (o *Open) clone() Body {
	cp := *o
	return &cp
}

// New creates a question of the given kind with a fresh ID.
func New(topic string, kind Kind, level Level, prompt string) Question {
	return Question{
		ID:     uuid.NewString(),
		Topic:  topic,
		Level:  level,
		Prompt: prompt,
		Body:   emptyBody(kind),
	}
}

func emptyBody(kind Kind) Body {
	if kind == KindMultipleChoice {
		return &Choice{}
	}
	return &Open{Format: kind}
}

// Kind returns the question kind, or "" when the body is missing.
func (q Question) Kind() Kind {
	if q.Body == nil {
		return ""
	}
	return q.Body.Kind()
}

// Points is the maximum score for this question.
func (q Question) Points() int {
	return q.Level.Points()
}

// Choice returns the multiple-choice body, if any.
func (q Question) Choice() (*Choice, bool) {
	c, ok := q.Body.(*Choice)
	return c, ok
}

// Open returns the manually graded body, if any.
func (q Question) Open() (*Open, bool) {
	o, ok := q.Body.(*Open)
	return o, ok
}

// Clone returns a deep copy.
func (q Question) Clone() Question {
	if q.Body != nil {
		q.Body = q.Body.clone()
	}
	return q
}

// SetKind switches the question to kind k. Moving between multiple choice
// and a manual kind discards the old body. Moving between two manual kinds
// keeps the reference answer.
func (q *Question) SetKind(k Kind) {
	if q.Kind() == k {
		return
	}
	if o, ok := q.Open(); ok && k.Manual() {
		q.Body = &Open{Format: k, Reference: o.Reference}
		return
	}
	q.Body = emptyBody(k)
}

// Normalize trims text fields and canonicalizes the correct index set:
// duplicates and out-of-range indices are dropped and the result sorted.
func (q *Question) Normalize() {
	q.Topic = strings.TrimSpace(q.Topic)
	q.Prompt = strings.TrimSpace(q.Prompt)

	switch b := q.Body.(type) {
	case *Choice:
		for i, opt := range b.Options {
			b.Options[i] = strings.TrimSpace(opt)
		}
		seen := make(map[int]bool, len(b.Correct))
		correct := make([]int, 0, len(b.Correct))
		for _, idx := range b.Correct {
			if idx < 0 || idx >= len(b.Options) || seen[idx] {
				continue
			}
			seen[idx] = true
			correct = append(correct, idx)
		}
		sort.Ints(correct)
		if !b.Multi && len(correct) > 1 {
			correct = correct[:1]
		}
		b.Correct = correct
	case *Open:
		b.Reference = strings.TrimSpace(b.Reference)
	}
}

// ValidationError describes an authored question that cannot be saved.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid question: %s: %s", e.Field, e.Message)
}

// Validate checks the required fields. It does not modify q.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Topic) == "" {
		return &ValidationError{Field: "topic", Message: "must not be empty"}
	}
	if !q.Level.Valid() {
		return &ValidationError{Field: "level", Message: fmt.Sprintf("unknown level %q", q.Level)}
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return &ValidationError{Field: "prompt", Message: "must not be empty"}
	}

	switch b := q.Body.(type) {
	case *Choice:
		if len(b.Options) < 2 {
			return &ValidationError{Field: "options", Message: "need at least 2 options"}
		}
		for i, opt := range b.Options {
			if strings.TrimSpace(opt) == "" {
				return &ValidationError{Field: "options", Message: fmt.Sprintf("option %d is empty", i+1)}
			}
		}
		if len(b.Correct) == 0 {
			return &ValidationError{Field: "correct", Message: "mark at least one correct option"}
		}
		for _, idx := range b.Correct {
			if idx < 0 || idx >= len(b.Options) {
				return &ValidationError{Field: "correct", Message: fmt.Sprintf("index %d out of range", idx)}
			}
		}
		if !b.Multi && len(b.Correct) > 1 {
			return &ValidationError{Field: "correct", Message: "single-answer question has several correct options"}
		}
	case *Open:
		if !b.Format.Valid() || !b.Format.Manual() {
			return &ValidationError{Field: "kind", Message: fmt.Sprintf("unsupported kind %q", b.Format)}
		}
	default:
		return &ValidationError{Field: "kind", Message: "missing"}
	}
	return nil
}

// wireQuestion is the flat JSON form used by every store and the HTTP API.
type wireQuestion struct {
	ID        string   `json:"id"`
	Topic     string   `json:"ip"`
	Kind      Kind     `json:"kind"`
	Level     Level    `json:"level"`
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options,omitempty"`
	Correct   []int    `json:"correct,omitempty"`
	Multiple  bool     `json:"multiple,omitempty"`
	Reference string   `json:"reference,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	w := wireQuestion{
		ID:     q.ID,
		Topic:  q.Topic,
		Kind:   q.Kind(),
		Level:  q.Level,
		Prompt: q.Prompt,
	}
	switch b := q.Body.(type) {
	case *Choice:
		w.Options = b.Options
		w.Correct = b.Correct
		w.Multiple = b.Multi
	case *Open:
		w.Reference = b.Reference
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the flat form. Fields that do not belong to the
// declared kind are dropped.
func (q *Question) UnmarshalJSON(data []byte) error {
	var w wireQuestion
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Kind.Valid() {
		return fmt.Errorf("question %q: unknown kind %q", w.ID, w.Kind)
	}

	*q = Question{
		ID:     w.ID,
		Topic:  w.Topic,
		Level:  w.Level,
		Prompt: w.Prompt,
	}
	if w.Kind == KindMultipleChoice {
		q.Body = &Choice{Options: w.Options, Correct: w.Correct, Multi: w.Multiple}
	} else {
		q.Body = &Open{Format: w.Kind, Reference: w.Reference}
	}
	return nil
}
