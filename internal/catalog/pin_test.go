package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ipquiz/internal/store"
)

func TestDefaultPIN(t *testing.T) {
	g := NewGate(store.NewMemoryStore())
	ctx := context.Background()

	assert.NoError(t, g.Verify(ctx, DefaultPIN))
	assert.ErrorIs(t, g.Verify(ctx, "0000"), ErrWrongPIN)
}

func TestChangePIN(t *testing.T) {
	mem := store.NewMemoryStore()
	g := NewGate(mem)
	ctx := context.Background()

	assert.ErrorIs(t, g.Change(ctx, "9999", "4321"), ErrWrongPIN)
	require.NoError(t, g.Change(ctx, DefaultPIN, "4321"))

	assert.NoError(t, g.Verify(ctx, "4321"))
	assert.ErrorIs(t, g.Verify(ctx, DefaultPIN), ErrWrongPIN)

	// A fresh gate reads the stored hash.
	g2 := NewGate(mem)
	assert.NoError(t, g2.Verify(ctx, "4321"))
}

func TestChangePINSaveFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.FailSaves = errors.New("read-only")
	g := NewGate(mem)
	ctx := context.Background()

	assert.Error(t, g.Change(ctx, DefaultPIN, "4321"))
	assert.NoError(t, g.Verify(ctx, DefaultPIN), "old PIN still valid")
}

func TestValidatePIN(t *testing.T) {
	tests := []struct {
		pin string
		ok  bool
	}{
		{"1234", true},
		{"123456789012", true},
		{"123", false},
		{"1234567890123", false},
		{"12a4", false},
		{"", false},
	}
	for _, tt := range tests {
		err := ValidatePIN(tt.pin)
		if tt.ok && err != nil {
			t.Errorf("ValidatePIN(%q) = %v, want nil", tt.pin, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidPIN) {
			t.Errorf("ValidatePIN(%q) = %v, want ErrInvalidPIN", tt.pin, err)
		}
	}
}
