package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/ipquiz/internal/quiz"
)

var (
	ErrNotPicking        = errors.New("questions can only be changed before the quiz starts")
	ErrEmptyBasket       = errors.New("pick at least one question first")
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrNotStarted        = errors.New("quiz has not started")
)

// Transition describes a completed phase change. Summary is set when To is
// PhaseFinished.
type Transition struct {
	SessionID string
	From      Phase
	To        Phase
	At        time.Time
	Basket    []string
	Summary   *Summary
}

// Observer is notified after every phase change. It must not block and
// cannot veto the change.
type Observer func(Transition)

// Option configures a Session.
type Option func(*Session)

// WithObserver registers fn to receive transitions.
func WithObserver(fn Observer) Option {
	return func(s *Session) {
		s.observers = append(s.observers, fn)
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is a single player's quiz run. It is not safe for concurrent use.
type Session struct {
	id        string
	phase     Phase
	basket    Basket
	answers   map[string]Answer
	bank      quiz.Bank
	summary   *Summary
	startedAt time.Time
	observers []Observer
	now       func() time.Time
}

// New creates a session in the picking phase over bank.
func New(bank quiz.Bank, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		phase:   PhasePicking,
		answers: make(map[string]Answer),
		bank:    bank,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies the current run. Reset starts a new run with a new ID.
func (s *Session) ID() string { return s.id }

func (s *Session) Phase() Phase { return s.phase }

// Bank returns the question bank the session reads from.
func (s *Session) Bank() quiz.Bank { return s.bank }

// SetBank replaces the bank wholesale. Basket entries whose question is gone
// stay in the basket and are skipped by counting and scoring.
func (s *Session) SetBank(bank quiz.Bank) {
	s.bank = bank
}

// Lookup resolves id against the current bank.
func (s *Session) Lookup(id string) (quiz.Question, bool) {
	return s.bank.Lookup(id)
}

// Basket returns the selected question IDs in order.
func (s *Session) Basket() []string { return s.basket.IDs() }

// Selected reports whether id is in the basket.
func (s *Session) Selected(id string) bool { return s.basket.Contains(id) }

// Count is the number of selected questions.
func (s *Session) Count() int { return s.basket.Len() }

// TopicCount counts selected questions in topic.
func (s *Session) TopicCount(topic string) int {
	return s.basket.TopicCount(topic, s.Lookup)
}

// Toggle adds or removes id from the basket. Only allowed while picking.
func (s *Session) Toggle(id string) (bool, error) {
	if s.phase != PhasePicking {
		return s.basket.Contains(id), ErrNotPicking
	}
	return s.basket.Toggle(id, s.Lookup)
}

// Start moves from picking to running.
func (s *Session) Start() error {
	if s.phase != PhasePicking {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, s.phase)
	}
	if s.basket.Len() == 0 {
		return ErrEmptyBasket
	}
	s.startedAt = s.now()
	s.transition(PhaseRunning)
	return nil
}

// Reveal moves from running to confirming.
func (s *Session) Reveal() error {
	if s.phase != PhaseRunning {
		return fmt.Errorf("%w: reveal from %s", ErrInvalidTransition, s.phase)
	}
	s.transition(PhaseConfirming)
	return nil
}

// Finish moves from confirming to finished and freezes the summary.
func (s *Session) Finish() (*Summary, error) {
	if s.phase != PhaseConfirming {
		return nil, fmt.Errorf("%w: finish from %s", ErrInvalidTransition, s.phase)
	}
	ids := s.basket.IDs()
	s.summary = &Summary{
		SessionID:  s.id,
		StartedAt:  s.startedAt,
		FinishedAt: s.now(),
		Result:     Score(ids, s.Lookup, s.answers),
		Items:      BuildItems(ids, s.Lookup, s.answers),
	}
	s.transition(PhaseFinished)
	return s.summary, nil
}

// Reset clears basket and answers and returns to picking from any phase.
func (s *Session) Reset() {
	from := s.phase
	oldID := s.id
	basket := s.basket.IDs()

	s.basket.Clear()
	s.answers = make(map[string]Answer)
	s.summary = nil
	s.startedAt = time.Time{}
	s.phase = PhasePicking
	s.id = uuid.NewString()

	s.notify(Transition{SessionID: oldID, From: from, To: PhasePicking, At: s.now(), Basket: basket})
}

// RecordAnswer shallow-merges patch into the answer for id. Rejected
// before the quiz starts and when the score is outside 0..points of a
// question still in the bank.
func (s *Session) RecordAnswer(id string, patch Answer) error {
	if s.phase == PhasePicking {
		return ErrNotStarted
	}
	if q, ok := s.Lookup(id); ok {
		if err := CheckScore(q, patch); err != nil {
			return err
		}
	}
	s.answers[id] = s.answers[id].merge(patch)
	return nil
}

// Answer returns the recorded answer for id.
func (s *Session) Answer(id string) (Answer, bool) {
	a, ok := s.answers[id]
	return a, ok
}

// Score computes the score so far.
func (s *Session) Score() Result {
	return Score(s.basket.IDs(), s.Lookup, s.answers)
}

// Summary returns the frozen summary, or nil before Finish.
func (s *Session) Summary() *Summary { return s.summary }

// StartedAt is the time Start succeeded, zero while picking.
func (s *Session) StartedAt() time.Time { return s.startedAt }

func (s *Session) transition(to Phase) {
	t := Transition{
		SessionID: s.id,
		From:      s.phase,
		To:        to,
		At:        s.now(),
		Basket:    s.basket.IDs(),
	}
	s.phase = to
	if to == PhaseFinished {
		t.Summary = s.summary
	}
	s.notify(t)
}

func (s *Session) notify(t Transition) {
	for _, fn := range s.observers {
		fn(t)
	}
}
