// Package catalog owns the in-memory question bank and hint map and hands
// every change to a Persister.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/store"
)

var (
	// ErrNotPersisted wraps a save failure. The in-memory change stands.
	ErrNotPersisted = errors.New("change kept in memory but not saved")

	ErrUnknownQuestion = errors.New("unknown question")
	ErrEmptyTopic      = errors.New("topic must not be empty")
)

// Persister receives the full collection after every mutation.
type Persister interface {
	SaveQuestions(ctx context.Context, bank quiz.Bank) error
	SaveHints(ctx context.Context, hints quiz.HintMap) error
}

// Loader supplies the collections at startup.
type Loader interface {
	LoadQuestions(ctx context.Context) (quiz.Bank, error)
	LoadHints(ctx context.Context) (quiz.HintMap, error)
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	questions quiz.Bank
	hints     quiz.HintMap
	persist   Persister
	log       logrus.FieldLogger
}

// New creates an empty catalog. persist may be nil for a read-only catalog
// that never saves.
func New(persist Persister, log logrus.FieldLogger) *Catalog {
	return &Catalog{
		questions: quiz.Bank{},
		hints:     quiz.HintMap{},
		persist:   persist,
		log:       log,
	}
}

// Load replaces the in-memory collections with what src holds. A
// collection src has never stored loads as empty.
func (c *Catalog) Load(ctx context.Context, src Loader) error {
	bank, err := src.LoadQuestions(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load questions: %w", err)
	}
	hints, err := src.LoadHints(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load hints: %w", err)
	}
	if bank == nil {
		bank = quiz.Bank{}
	}
	if hints == nil {
		hints = quiz.HintMap{}
	}

	c.mu.Lock()
	c.questions = bank
	c.hints = hints
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"questions": len(bank),
		"topics":    len(quiz.Topics(bank, hints)),
	}).Info("Catalog loaded")
	return nil
}

// Bank returns a copy of the question collection.
func (c *Catalog) Bank() quiz.Bank {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.questions.Clone()
}

// Hints returns a copy of the hint map.
func (c *Catalog) Hints() quiz.HintMap {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hints.Clone()
}

// Hint returns the hint for topic.
func (c *Catalog) Hint(topic string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.hints[topic]
	return h, ok
}

// Topics lists every topic with a question or hint, sorted.
func (c *Catalog) Topics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return quiz.Topics(c.questions, c.hints)
}

// Question looks up one question by ID.
func (c *Catalog) Question(id string) (quiz.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.questions.Lookup(id)
	if !ok {
		return quiz.Question{}, false
	}
	return q.Clone(), true
}

// ByTopic lists the questions in topic.
func (c *Catalog) ByTopic(topic string) []quiz.Question {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return quiz.Bank(c.questions.ByTopic(topic)).Clone()
}

// Save validates q and inserts it, or replaces the question with the same
// ID in place. An empty ID gets a fresh one. The stored question is
// returned.
func (c *Catalog) Save(ctx context.Context, q quiz.Question) (quiz.Question, error) {
	q = q.Clone()
	q.Normalize()
	if err := q.Validate(); err != nil {
		return quiz.Question{}, err
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	c.mu.Lock()
	replaced := false
	for i := range c.questions {
		if c.questions[i].ID == q.ID {
			c.questions[i] = q
			replaced = true
			break
		}
	}
	if !replaced {
		c.questions = append(c.questions, q)
	}
	snapshot := c.questions.Clone()
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"question_id": q.ID, "topic": q.Topic, "replaced": replaced}).
		Info("Question saved")
	return q.Clone(), c.saveQuestions(ctx, snapshot)
}

// Delete removes the question with id.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := -1
	for i := range c.questions {
		if c.questions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	c.questions = append(c.questions[:idx:idx], c.questions[idx+1:]...)
	snapshot := c.questions.Clone()
	c.mu.Unlock()

	c.log.WithField("question_id", id).Info("Question deleted")
	return c.saveQuestions(ctx, snapshot)
}

// SetHint creates or replaces the hint for topic. An empty text still
// makes the topic visible.
func (c *Catalog) SetHint(ctx context.Context, topic, text string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrEmptyTopic
	}

	c.mu.Lock()
	c.hints[topic] = text
	snapshot := c.hints.Clone()
	c.mu.Unlock()

	return c.saveHints(ctx, snapshot)
}

// DeleteHint removes the hint entry for topic. Questions in the topic keep
// it visible.
func (c *Catalog) DeleteHint(ctx context.Context, topic string) error {
	c.mu.Lock()
	if _, ok := c.hints[topic]; !ok {
		c.mu.Unlock()
		return nil
	}
	delete(c.hints, topic)
	snapshot := c.hints.Clone()
	c.mu.Unlock()

	return c.saveHints(ctx, snapshot)
}

// Replace swaps both collections wholesale, as an import does. Every
// question is validated first; nothing changes when one fails.
func (c *Catalog) Replace(ctx context.Context, bank quiz.Bank, hints quiz.HintMap) error {
	bank, err := prepareBank(bank)
	if err != nil {
		return err
	}
	if hints == nil {
		hints = quiz.HintMap{}
	}

	c.mu.Lock()
	c.questions = bank
	c.hints = hints.Clone()
	qs, hs := c.questions.Clone(), c.hints.Clone()
	c.mu.Unlock()

	return errors.Join(c.saveQuestions(ctx, qs), c.saveHints(ctx, hs))
}

// ReplaceQuestions swaps the question collection, keeping hints.
func (c *Catalog) ReplaceQuestions(ctx context.Context, bank quiz.Bank) error {
	bank, err := prepareBank(bank)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.questions = bank
	qs := c.questions.Clone()
	c.mu.Unlock()

	return c.saveQuestions(ctx, qs)
}

// ReplaceHints swaps the hint map, keeping questions.
func (c *Catalog) ReplaceHints(ctx context.Context, hints quiz.HintMap) error {
	clean := quiz.HintMap{}
	for topic, text := range hints {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			return ErrEmptyTopic
		}
		clean[topic] = text
	}

	c.mu.Lock()
	c.hints = clean
	hs := c.hints.Clone()
	c.mu.Unlock()

	return c.saveHints(ctx, hs)
}

func prepareBank(bank quiz.Bank) (quiz.Bank, error) {
	bank = bank.Clone()
	if bank == nil {
		bank = quiz.Bank{}
	}
	seen := make(map[string]bool, len(bank))
	for i := range bank {
		bank[i].Normalize()
		if bank[i].ID == "" {
			bank[i].ID = uuid.NewString()
		}
		if seen[bank[i].ID] {
			return nil, fmt.Errorf("duplicate question id %s", bank[i].ID)
		}
		seen[bank[i].ID] = true
		if err := bank[i].Validate(); err != nil {
			return nil, fmt.Errorf("question %d (%s): %w", i+1, bank[i].ID, err)
		}
	}
	return bank, nil
}

func (c *Catalog) saveQuestions(ctx context.Context, bank quiz.Bank) error {
	if c.persist == nil {
		return nil
	}
	if err := c.persist.SaveQuestions(ctx, bank); err != nil {
		c.log.WithError(err).Warn("Failed to persist questions")
		return fmt.Errorf("%w: questions: %w", ErrNotPersisted, err)
	}
	return nil
}

func (c *Catalog) saveHints(ctx context.Context, hints quiz.HintMap) error {
	if c.persist == nil {
		return nil
	}
	if err := c.persist.SaveHints(ctx, hints); err != nil {
		c.log.WithError(err).Warn("Failed to persist hints")
		return fmt.Errorf("%w: hints: %w", ErrNotPersisted, err)
	}
	return nil
}
