package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/store"
)

func scenarioBank() quiz.Bank {
	return quiz.Bank{
		mcq("x1", "X", quiz.LevelB, 1),
		mcq("x2", "X", quiz.LevelB, 1),
		mcq("x3", "X", quiz.LevelB, 1),
		openQ("y1", "Y", quiz.KindShortAnswer, quiz.LevelA),
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := New(scenarioBank())

	for _, id := range []string{"x1", "x2"} {
		_, err := s.Toggle(id)
		require.NoError(t, err)
	}
	_, err := s.Toggle("x3")
	require.ErrorIs(t, err, ErrTopicCap)

	// Swap the second X question for the Y question.
	_, err = s.Toggle("x2")
	require.NoError(t, err)
	_, err = s.Toggle("y1")
	require.NoError(t, err)
	require.Equal(t, []string{"x1", "y1"}, s.Basket())

	require.NoError(t, s.Start())
	assert.Equal(t, PhaseRunning, s.Phase())

	require.NoError(t, s.RecordAnswer("x1", Choose(1)))
	require.NoError(t, s.RecordAnswer("y1", Grade(2)))

	require.NoError(t, s.Reveal())
	assert.Equal(t, PhaseConfirming, s.Phase())

	sum, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, PhaseFinished, s.Phase())

	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, map[string]int{"X": 2, "Y": 2}, sum.ByTopic)
	assert.Equal(t, map[quiz.Level]int{
		quiz.LevelA: 2,
		quiz.LevelB: 2,
		quiz.LevelC: 0,
		quiz.LevelS: 0,
	}, sum.ByLevel)
	assert.Len(t, sum.Items, 2)
	assert.Same(t, sum, s.Summary())
}

func TestStartRequiresBasket(t *testing.T) {
	s := New(scenarioBank())
	err := s.Start()
	assert.ErrorIs(t, err, ErrEmptyBasket)
	assert.Equal(t, PhasePicking, s.Phase())
}

func TestPhaseMonotonicity(t *testing.T) {
	s := New(scenarioBank())
	_, err := s.Toggle("x1")
	require.NoError(t, err)

	// From picking only Start advances.
	assert.ErrorIs(t, s.Reveal(), ErrInvalidTransition)
	_, err = s.Finish()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, PhasePicking, s.Phase())

	require.NoError(t, s.Start())

	// From running only Reveal advances.
	assert.ErrorIs(t, s.Start(), ErrInvalidTransition)
	_, err = s.Finish()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, PhaseRunning, s.Phase())

	require.NoError(t, s.Reveal())

	// From confirming only Finish advances.
	assert.ErrorIs(t, s.Start(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Reveal(), ErrInvalidTransition)
	assert.Equal(t, PhaseConfirming, s.Phase())

	_, err = s.Finish()
	require.NoError(t, err)

	assert.ErrorIs(t, s.Start(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Reveal(), ErrInvalidTransition)
	_, err = s.Finish()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, PhaseFinished, s.Phase())
}

func TestResetFromEveryPhase(t *testing.T) {
	advance := []func(s *Session){
		func(s *Session) {},
		func(s *Session) { s.Start() },
		func(s *Session) { s.Start(); s.Reveal() },
		func(s *Session) { s.Start(); s.Reveal(); s.Finish() },
	}
	for i, adv := range advance {
		s := New(scenarioBank())
		_, err := s.Toggle("x1")
		require.NoError(t, err)
		adv(s)
		assert.Equal(t, Phase(i), s.Phase())
		if s.Phase() != PhasePicking {
			require.NoError(t, s.RecordAnswer("x1", Choose(1)))
		}

		oldID := s.ID()
		s.Reset()
		assert.Equal(t, PhasePicking, s.Phase())
		assert.Empty(t, s.Basket())
		_, ok := s.Answer("x1")
		assert.False(t, ok)
		assert.Nil(t, s.Summary())
		assert.NotEqual(t, oldID, s.ID())
	}
}

func TestToggleRejectedOutsidePicking(t *testing.T) {
	s := New(scenarioBank())
	_, err := s.Toggle("x1")
	require.NoError(t, err)
	require.NoError(t, s.Start())

	selected, err := s.Toggle("x1")
	assert.ErrorIs(t, err, ErrNotPicking)
	assert.True(t, selected)
	assert.Equal(t, []string{"x1"}, s.Basket())
}

func TestRecordAnswerPhases(t *testing.T) {
	s := New(scenarioBank())
	_, err := s.Toggle("y1")
	require.NoError(t, err)

	assert.ErrorIs(t, s.RecordAnswer("y1", Grade(1)), ErrNotStarted)

	require.NoError(t, s.Start())
	require.NoError(t, s.Reveal())
	// Late grading after reveal is accepted.
	require.NoError(t, s.RecordAnswer("y1", Grade(3)))
	assert.Equal(t, 3, s.Score().Total)

	_, err = s.Finish()
	require.NoError(t, err)
	// The engine still accepts writes; the frozen summary does not change.
	require.NoError(t, s.RecordAnswer("y1", Grade(0)))
	assert.Equal(t, 3, s.Summary().Total)
	assert.Equal(t, 0, s.Score().Total)
}

func TestRecordAnswerRejectsOutOfRangeScore(t *testing.T) {
	s := New(scenarioBank())
	_, err := s.Toggle("y1")
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.NoError(t, s.RecordAnswer("y1", Grade(2)))

	for _, v := range []int{-3, 4, 42} {
		assert.ErrorIs(t, s.RecordAnswer("y1", Grade(v)), ErrScoreRange, "score %d", v)
	}
	assert.Equal(t, 2, s.Score().Total)

	// A question removed from the bank cannot be range-checked.
	s.SetBank(quiz.Bank{})
	assert.NoError(t, s.RecordAnswer("y1", Grade(9)))
}

func TestSetBankDropsDeletedFromScore(t *testing.T) {
	s := New(scenarioBank())
	s.Toggle("x1")
	s.Toggle("y1")
	require.NoError(t, s.Start())
	s.RecordAnswer("x1", Choose(1))
	s.RecordAnswer("y1", Grade(3))

	s.SetBank(quiz.Bank{scenarioBank()[3]})
	assert.Equal(t, 3, s.Score().Total)
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, 0, s.TopicCount("X"))
}

func TestObserverSeesTransitions(t *testing.T) {
	var got []Transition
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := New(scenarioBank(),
		WithObserver(func(tr Transition) { got = append(got, tr) }),
		WithClock(func() time.Time { return clock }),
	)
	s.Toggle("x1")
	require.NoError(t, s.Start())
	clock = clock.Add(90 * time.Second)
	require.NoError(t, s.Reveal())
	sum, err := s.Finish()
	require.NoError(t, err)
	s.Reset()

	require.Len(t, got, 4)
	assert.Equal(t, PhaseRunning, got[0].To)
	assert.Equal(t, PhaseConfirming, got[1].To)
	assert.Equal(t, PhaseFinished, got[2].To)
	assert.Same(t, sum, got[2].Summary)
	assert.Equal(t, 90*time.Second, sum.Duration())
	assert.Equal(t, PhasePicking, got[3].To)
	assert.Equal(t, PhaseFinished, got[3].From)
	assert.Equal(t, got[0].SessionID, got[3].SessionID)
}

type fakeSink struct {
	mu     sync.Mutex
	events []store.SessionEventData
	err    error
}

func (f *fakeSink) AppendSessionEvent(_ context.Context, data store.SessionEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, data)
	return f.err
}

func TestRecorderPersistsLifecycle(t *testing.T) {
	sink := &fakeSink{}
	logger, _ := test.NewNullLogger()
	rec := NewRecorder(sink, logger)

	s := New(scenarioBank(), WithObserver(rec.Observe))
	s.Toggle("x1")
	s.Toggle("y1")
	require.NoError(t, s.Start())
	s.RecordAnswer("x1", Choose(1))
	require.NoError(t, s.Reveal())
	_, err := s.Finish()
	require.NoError(t, err)
	rec.Wait()

	require.Len(t, sink.events, 2)
	byAction := map[string]store.SessionEventData{}
	for _, e := range sink.events {
		byAction[e.Action] = e
	}
	assert.Equal(t, 2, byAction[store.ActionStart].Questions)
	fin := byAction[store.ActionFinish]
	assert.Equal(t, 2, fin.Total)
	assert.Equal(t, 5, fin.Possible)
	assert.Equal(t, 2, fin.ByLevel["B"])
}

func TestRecorderFailureKeepsSessionState(t *testing.T) {
	sink := &fakeSink{err: errors.New("disk full")}
	logger, hook := test.NewNullLogger()
	rec := NewRecorder(sink, logger)

	s := New(scenarioBank(), WithObserver(rec.Observe))
	s.Toggle("x1")
	require.NoError(t, s.Start())
	rec.Wait()

	assert.Equal(t, PhaseRunning, s.Phase())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRecorderAbandon(t *testing.T) {
	sink := &fakeSink{}
	logger, _ := test.NewNullLogger()
	rec := NewRecorder(sink, logger)

	s := New(scenarioBank(), WithObserver(rec.Observe))
	s.Toggle("x1")
	require.NoError(t, s.Start())
	s.Reset()
	// Reset while picking is not an event.
	s.Reset()
	rec.Wait()

	require.Len(t, sink.events, 2)
	actions := []string{sink.events[0].Action, sink.events[1].Action}
	assert.ElementsMatch(t, []string{store.ActionStart, store.ActionAbandon}, actions)
}
