package store

import (
	"context"
	"sync"

	"github.com/abhisek/ipquiz/internal/quiz"
)

// MemoryStore keeps everything in process memory. Nothing survives a
// restart.
type MemoryStore struct {
	mu        sync.RWMutex
	questions quiz.Bank
	hints     quiz.HintMap
	pinHash   string

	// FailSaves makes every save return this error. Used by tests.
	FailSaves error
}

var _ Repo = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadQuestions(ctx context.Context) (quiz.Bank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.questions == nil {
		return nil, ErrNotFound
	}
	return m.questions.Clone(), nil
}

func (m *MemoryStore) SaveQuestions(ctx context.Context, bank quiz.Bank) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.questions = bank.Clone()
	if m.questions == nil {
		m.questions = quiz.Bank{}
	}
	return nil
}

func (m *MemoryStore) LoadHints(ctx context.Context) (quiz.HintMap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.hints == nil {
		return nil, ErrNotFound
	}
	return m.hints.Clone(), nil
}

func (m *MemoryStore) SaveHints(ctx context.Context, hints quiz.HintMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.hints = hints.Clone()
	return nil
}

func (m *MemoryStore) LoadPINHash(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pinHash == "" {
		return "", ErrNotFound
	}
	return m.pinHash, nil
}

func (m *MemoryStore) SavePINHash(ctx context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.pinHash = hash
	return nil
}

func (m *MemoryStore) Close() error { return nil }
