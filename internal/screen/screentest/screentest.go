// Package screentest builds screen environments backed by in-memory
// stores for tests.
package screentest

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/abhisek/ipquiz/internal/catalog"
	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/screen"
	"github.com/abhisek/ipquiz/internal/session"
	"github.com/abhisek/ipquiz/internal/store"
)

// NewEnv returns an Env whose catalog holds bank and hints. The session
// starts in the picking phase over the same bank.
func NewEnv(t *testing.T, bank quiz.Bank, hints quiz.HintMap) (*screen.Env, *store.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	log, _ := test.NewNullLogger()

	mem := store.NewMemoryStore()
	if err := mem.SaveQuestions(ctx, bank); err != nil {
		t.Fatalf("seed questions: %v", err)
	}
	if hints == nil {
		hints = quiz.HintMap{}
	}
	if err := mem.SaveHints(ctx, hints); err != nil {
		t.Fatalf("seed hints: %v", err)
	}

	cat := catalog.New(mem, log)
	if err := cat.Load(ctx, mem); err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	return &screen.Env{
		Catalog: cat,
		Gate:    catalog.NewGate(mem),
		Session: session.New(cat.Bank()),
		Log:     log,
	}, mem
}

// Choice builds a multiple-choice question with a fixed ID.
func Choice(id, topic string, level quiz.Level, correct ...int) quiz.Question {
	return quiz.Question{
		ID:     id,
		Topic:  topic,
		Level:  level,
		Prompt: "Prompt for " + id,
		Body:   &quiz.Choice{Options: []string{"one", "two", "three"}, Correct: correct, Multi: len(correct) > 1},
	}
}

// Open builds a manually graded question with a fixed ID.
func Open(id, topic string, level quiz.Level, reference string) quiz.Question {
	return quiz.Question{
		ID:     id,
		Topic:  topic,
		Level:  level,
		Prompt: "Prompt for " + id,
		Body:   &quiz.Open{Format: quiz.KindShortAnswer, Reference: reference},
	}
}

// Key returns a key press for a printable rune.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Special returns a key press for a non-printable key such as tea.KeyEnter.
func Special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}
