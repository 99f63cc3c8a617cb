package store

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/ipquiz/internal/quiz"
)

// Chain reads from the first repo that has data and writes to the primary
// only. A typical chain is a writable backend followed by the bundled bank.
type Chain struct {
	repos []Repo
	log   logrus.FieldLogger
}

var _ Repo = (*Chain)(nil)

// NewChain builds a chain. primary receives every save.
func NewChain(log logrus.FieldLogger, primary Repo, fallbacks ...Repo) *Chain {
	return &Chain{repos: append([]Repo{primary}, fallbacks...), log: log}
}

// Primary is the writable repo.
func (c *Chain) Primary() Repo {
	return c.repos[0]
}

// Events returns the primary's event repo, or nil when the backend does not
// record events.
func (c *Chain) Events() EventRepo {
	if er, ok := c.repos[0].(EventRepo); ok {
		return er
	}
	return nil
}

// loadFirst tries each repo in order. Failures other than ErrNotFound are
// logged before falling through.
func loadFirst[T any](ctx context.Context, c *Chain, what string, load func(Repo) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error = ErrNotFound
	)
	for i, r := range c.repos {
		v, err := load(r)
		if err == nil {
			if i > 0 {
				c.log.WithFields(logrus.Fields{"what": what, "source": i}).Debug("Loaded from fallback store")
			}
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			c.log.WithError(err).WithField("what", what).Warn("Store load failed, trying fallback")
			lastErr = err
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}

func (c *Chain) LoadQuestions(ctx context.Context) (quiz.Bank, error) {
	return loadFirst(ctx, c, "questions", func(r Repo) (quiz.Bank, error) { return r.LoadQuestions(ctx) })
}

func (c *Chain) SaveQuestions(ctx context.Context, bank quiz.Bank) error {
	return c.Primary().SaveQuestions(ctx, bank)
}

func (c *Chain) LoadHints(ctx context.Context) (quiz.HintMap, error) {
	return loadFirst(ctx, c, "hints", func(r Repo) (quiz.HintMap, error) { return r.LoadHints(ctx) })
}

func (c *Chain) SaveHints(ctx context.Context, hints quiz.HintMap) error {
	return c.Primary().SaveHints(ctx, hints)
}

func (c *Chain) LoadPINHash(ctx context.Context) (string, error) {
	return loadFirst(ctx, c, "pin", func(r Repo) (string, error) { return r.LoadPINHash(ctx) })
}

func (c *Chain) SavePINHash(ctx context.Context, hash string) error {
	return c.Primary().SavePINHash(ctx, hash)
}

// Close closes every repo in the chain.
func (c *Chain) Close() error {
	var errs []error
	for _, r := range c.repos {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
