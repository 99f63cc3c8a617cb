package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/ipquiz/internal/store"
)

// DefaultPIN unlocks admin mode until a PIN has been set.
const DefaultPIN = "1234"

const (
	minPINLength = 4
	maxPINLength = 12
	bcryptCost   = 12
)

var (
	ErrWrongPIN   = errors.New("wrong PIN")
	ErrInvalidPIN = fmt.Errorf("PIN must be %d to %d digits", minPINLength, maxPINLength)
)

// PINStore persists the PIN hash.
type PINStore interface {
	LoadPINHash(ctx context.Context) (string, error)
	SavePINHash(ctx context.Context, hash string) error
}

// Gate checks and changes the shared admin PIN. The hash is loaded lazily
// and cached.
type Gate struct {
	mu    sync.Mutex
	store PINStore
	hash  []byte
}

func NewGate(s PINStore) *Gate {
	return &Gate{store: s}
}

func (g *Gate) currentHash(ctx context.Context) ([]byte, error) {
	if g.hash != nil {
		return g.hash, nil
	}
	h, err := g.store.LoadPINHash(ctx)
	if errors.Is(err, store.ErrNotFound) {
		def, err := bcrypt.GenerateFromPassword([]byte(DefaultPIN), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("hash default pin: %w", err)
		}
		g.hash = def
		return g.hash, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pin: %w", err)
	}
	g.hash = []byte(h)
	return g.hash, nil
}

// Verify returns nil when pin matches, ErrWrongPIN when it does not.
func (g *Gate) Verify(ctx context.Context, pin string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	hash, err := g.currentHash(ctx)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(pin)) != nil {
		return ErrWrongPIN
	}
	return nil
}

// Change replaces the PIN after verifying the old one.
func (g *Gate) Change(ctx context.Context, oldPIN, newPIN string) error {
	if err := ValidatePIN(newPIN); err != nil {
		return err
	}
	if err := g.Verify(ctx, oldPIN); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPIN), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.SavePINHash(ctx, string(hash)); err != nil {
		return fmt.Errorf("save pin: %w", err)
	}
	g.hash = hash
	return nil
}

// Invalidate drops the cached hash so the next check reloads it.
func (g *Gate) Invalidate() {
	g.mu.Lock()
	g.hash = nil
	g.mu.Unlock()
}

// ValidatePIN checks the PIN format.
func ValidatePIN(pin string) error {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}
