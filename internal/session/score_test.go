package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/ipquiz/internal/quiz"
)

func TestScoreExactMatch(t *testing.T) {
	q := mcq("q1", "X", quiz.LevelB, 0, 2) // B = 2 points
	bank := quiz.Bank{q}

	tests := []struct {
		name   string
		chosen []int
		want   int
	}{
		{"exact", []int{0, 2}, 2},
		{"exact unordered", []int{2, 0}, 2},
		{"subset", []int{0}, 0},
		{"superset", []int{0, 1, 2}, 0},
		{"empty", []int{}, 0},
		{"duplicates collapse", []int{0, 2, 2}, 2},
		{"out of range", []int{0, 2, 9}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := map[string]Answer{"q1": {Chosen: tt.chosen}}
			res := Score([]string{"q1"}, bank.Lookup, answers)
			if res.Total != tt.want {
				t.Errorf("Total = %d, want %d", res.Total, tt.want)
			}
		})
	}
}

func TestScoreManualPassthrough(t *testing.T) {
	bank := quiz.Bank{openQ("s1", "Y", quiz.KindShortAnswer, quiz.LevelS)}

	res := Score([]string{"s1"}, bank.Lookup, map[string]Answer{"s1": Grade(3)})
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.ByLevel[quiz.LevelS])
	assert.Equal(t, 5, res.Possible)

	res = Score([]string{"s1"}, bank.Lookup, nil)
	assert.Equal(t, 0, res.Total)
}

func TestScoreSkipsDeletedQuestions(t *testing.T) {
	bank := quiz.Bank{mcq("q1", "X", quiz.LevelA, 1)}
	answers := map[string]Answer{
		"q1":   Choose(1),
		"gone": Grade(5),
	}

	res := Score([]string{"q1", "gone"}, bank.Lookup, answers)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Possible)
	assert.Equal(t, map[string]int{"X": 3}, res.ByTopic)
}

func TestScoreByLevelAlwaysHasAllLevels(t *testing.T) {
	res := Score(nil, quiz.Bank{}.Lookup, nil)
	assert.Equal(t, map[quiz.Level]int{
		quiz.LevelA: 0,
		quiz.LevelB: 0,
		quiz.LevelC: 0,
		quiz.LevelS: 0,
	}, res.ByLevel)
	assert.Empty(t, res.ByTopic)
}

func TestScoreIgnoresAnswersOutsideBasket(t *testing.T) {
	bank := quiz.Bank{
		mcq("q1", "X", quiz.LevelC, 0),
		mcq("q2", "X", quiz.LevelC, 0),
	}
	answers := map[string]Answer{"q1": Choose(0), "q2": Choose(0)}

	res := Score([]string{"q1"}, bank.Lookup, answers)
	assert.Equal(t, 1, res.Total)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Result{}.Percent())
	assert.InDelta(t, 50.0, Result{Total: 2, Possible: 4}.Percent(), 0.001)
}

func TestAnswerMergeIsShallow(t *testing.T) {
	a := Answer{}.merge(Grade(2))
	a = a.merge(Choose(1, 3))
	assert.Equal(t, []int{1, 3}, a.Chosen)
	if assert.NotNil(t, a.Score) {
		assert.Equal(t, 2, *a.Score)
	}

	a = a.merge(Choose())
	assert.Empty(t, a.Chosen)
	assert.NotNil(t, a.Chosen)
	assert.Equal(t, 2, *a.Score)
}

func TestAnswerToggled(t *testing.T) {
	a := Answer{}
	a = a.merge(a.Toggled(2, false))
	a = a.merge(a.Toggled(0, false))
	assert.Equal(t, []int{0, 2}, a.Chosen)

	a = a.merge(a.Toggled(2, false))
	assert.Equal(t, []int{0}, a.Chosen)

	a = a.merge(a.Toggled(3, true))
	assert.Equal(t, []int{3}, a.Chosen)
}

func TestCheckScore(t *testing.T) {
	q := openQ("c1", "C", quiz.KindShortAnswer, quiz.LevelC)
	tests := []struct {
		name  string
		patch Answer
		ok    bool
	}{
		{"no score", Choose(1), true},
		{"zero", Grade(0), true},
		{"full", Grade(1), true},
		{"above points", Grade(1000), false},
		{"negative", Grade(-7), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckScore(q, tt.patch)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrScoreRange)
			}
		})
	}
}
