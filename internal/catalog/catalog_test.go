package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/store"
)

func newTestCatalog(t *testing.T) (*Catalog, *store.MemoryStore, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	mem := store.NewMemoryStore()
	return New(mem, log), mem, hook
}

func choiceQuestion(topic string) quiz.Question {
	q := quiz.New(topic, quiz.KindMultipleChoice, quiz.LevelB, "Which one?")
	q.Body = &quiz.Choice{Options: []string{"a", "b", "c"}, Correct: []int{2, 2}}
	return q
}

func TestSaveInsertsAndPersists(t *testing.T) {
	c, mem, _ := newTestCatalog(t)
	ctx := context.Background()

	saved, err := c.Save(ctx, choiceQuestion("X"))
	require.NoError(t, err)
	ch, _ := saved.Choice()
	assert.Equal(t, []int{2}, ch.Correct, "normalized before save")

	persisted, err := mem.LoadQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, saved.ID, persisted[0].ID)
}

func TestSaveReplacesInPlace(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	ctx := context.Background()

	first, err := c.Save(ctx, choiceQuestion("X"))
	require.NoError(t, err)
	_, err = c.Save(ctx, choiceQuestion("Y"))
	require.NoError(t, err)

	edited := first
	edited.Prompt = "Edited"
	_, err = c.Save(ctx, edited)
	require.NoError(t, err)

	bank := c.Bank()
	require.Len(t, bank, 2)
	assert.Equal(t, first.ID, bank[0].ID)
	assert.Equal(t, "Edited", bank[0].Prompt)
}

func TestSaveAssignsMissingID(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	q := choiceQuestion("X")
	q.ID = ""
	saved, err := c.Save(context.Background(), q)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
}

func TestSaveRejectsInvalid(t *testing.T) {
	c, mem, _ := newTestCatalog(t)
	q := choiceQuestion("X")
	q.Body = &quiz.Choice{Options: []string{"only"}}

	_, err := c.Save(context.Background(), q)
	var ve *quiz.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Empty(t, c.Bank())

	_, err = mem.LoadQuestions(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound, "nothing persisted")
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	c, mem, hook := newTestCatalog(t)
	mem.FailSaves = errors.New("quota exceeded")

	saved, err := c.Save(context.Background(), choiceQuestion("X"))
	assert.ErrorIs(t, err, ErrNotPersisted)
	assert.NotEmpty(t, saved.ID)

	_, ok := c.Question(saved.ID)
	assert.True(t, ok)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestDelete(t *testing.T) {
	c, mem, _ := newTestCatalog(t)
	ctx := context.Background()
	q, err := c.Save(ctx, choiceQuestion("X"))
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, q.ID))
	assert.Empty(t, c.Bank())
	persisted, err := mem.LoadQuestions(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)

	assert.ErrorIs(t, c.Delete(ctx, q.ID), ErrUnknownQuestion)
}

func TestHints(t *testing.T) {
	c, mem, _ := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.SetHint(ctx, " Empty ", ""))
	require.NoError(t, c.SetHint(ctx, "X", "read carefully"))
	assert.ErrorIs(t, c.SetHint(ctx, "  ", "x"), ErrEmptyTopic)

	assert.Equal(t, []string{"Empty", "X"}, c.Topics())
	h, ok := c.Hint("X")
	assert.True(t, ok)
	assert.Equal(t, "read carefully", h)

	persisted, err := mem.LoadHints(ctx)
	require.NoError(t, err)
	assert.Equal(t, quiz.HintMap{"Empty": "", "X": "read carefully"}, persisted)

	require.NoError(t, c.DeleteHint(ctx, "Empty"))
	assert.Equal(t, []string{"X"}, c.Topics())
	require.NoError(t, c.DeleteHint(ctx, "never-there"))
}

func TestLoadFromRepo(t *testing.T) {
	log, _ := test.NewNullLogger()
	c := New(nil, log)

	require.NoError(t, c.Load(context.Background(), store.Bundled()))
	assert.NotEmpty(t, c.Bank())
	assert.Contains(t, c.Topics(), "Go")
}

func TestLoadEmptyRepo(t *testing.T) {
	c, mem, _ := newTestCatalog(t)
	require.NoError(t, c.Load(context.Background(), mem))
	assert.Empty(t, c.Bank())
	assert.Empty(t, c.Topics())
}

func TestReplaceValidatesEverything(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	ctx := context.Background()
	good := choiceQuestion("X")
	bad := choiceQuestion("Y")
	bad.Prompt = ""

	err := c.Replace(ctx, quiz.Bank{good, bad}, nil)
	assert.Error(t, err)
	assert.Empty(t, c.Bank())

	dup := good
	err = c.Replace(ctx, quiz.Bank{good, dup}, nil)
	assert.ErrorContains(t, err, "duplicate")

	require.NoError(t, c.Replace(ctx, quiz.Bank{good}, quiz.HintMap{"Z": ""}))
	assert.Equal(t, []string{"X", "Z"}, c.Topics())
}

func TestCatalogReturnsCopies(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	q, err := c.Save(context.Background(), choiceQuestion("X"))
	require.NoError(t, err)

	bank := c.Bank()
	bank[0].Body.(*quiz.Choice).Options[0] = "mutated"

	again, _ := c.Question(q.ID)
	ch, _ := again.Choice()
	assert.Equal(t, "a", ch.Options[0])
}
