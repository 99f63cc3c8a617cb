package quiz

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelPoints(t *testing.T) {
	tests := []struct {
		level Level
		want  int
	}{
		{LevelA, 3},
		{LevelB, 2},
		{LevelC, 1},
		{LevelS, 5},
		{Level("Z"), 0},
	}
	for _, tt := range tests {
		if got := tt.level.Points(); got != tt.want {
			t.Errorf("%s.Points() = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel(" s ")
	require.NoError(t, err)
	assert.Equal(t, LevelS, l)

	_, err = ParseLevel("D")
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"multiple-choice", KindMultipleChoice},
		{"short_answer", KindShortAnswer},
		{"Fill In Blank", KindFillInBlank},
		{"reading-comprehension", KindReadingComprehension},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Errorf("ParseKind(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseKind("essay"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := New("X", KindMultipleChoice, LevelB, "p")
	b := New("X", KindMultipleChoice, LevelB, "p")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, KindMultipleChoice, a.Kind())
}

func TestSetKindDiscardsChoiceFields(t *testing.T) {
	q := New("X", KindMultipleChoice, LevelB, "p")
	q.Body = &Choice{Options: []string{"a", "b"}, Correct: []int{1}}

	q.SetKind(KindShortAnswer)
	o, ok := q.Open()
	require.True(t, ok)
	assert.Equal(t, KindShortAnswer, o.Format)
	assert.Empty(t, o.Reference)

	q.SetKind(KindMultipleChoice)
	c, ok := q.Choice()
	require.True(t, ok)
	assert.Empty(t, c.Options)
	assert.Empty(t, c.Correct)
}

func TestSetKindBetweenManualKindsKeepsReference(t *testing.T) {
	q := New("X", KindShortAnswer, LevelA, "p")
	q.Body.(*Open).Reference = "model answer"

	q.SetKind(KindFillInBlank)
	o, ok := q.Open()
	require.True(t, ok)
	assert.Equal(t, KindFillInBlank, o.Format)
	assert.Equal(t, "model answer", o.Reference)
}

func TestNormalizeCorrectIndices(t *testing.T) {
	tests := []struct {
		name  string
		multi bool
		in    []int
		want  []int
	}{
		{"dedupe and sort", true, []int{2, 0, 2}, []int{0, 2}},
		{"drop out of range", true, []int{-1, 1, 5}, []int{1}},
		{"single keeps lowest", false, []int{2, 1}, []int{1}},
		{"empty stays empty", false, nil, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{
				Topic:  " X ",
				Level:  LevelB,
				Prompt: "p",
				Body:   &Choice{Options: []string{" a", "b ", "c"}, Correct: tt.in, Multi: tt.multi},
			}
			q.Normalize()
			c, _ := q.Choice()
			assert.Equal(t, tt.want, c.Correct)
			assert.Equal(t, []string{"a", "b", "c"}, c.Options)
			assert.Equal(t, "X", q.Topic)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Question {
		return Question{
			ID:     "q1",
			Topic:  "X",
			Level:  LevelB,
			Prompt: "Which?",
			Body:   &Choice{Options: []string{"a", "b"}, Correct: []int{0}},
		}
	}

	tests := []struct {
		name   string
		mutate func(q *Question)
		field  string
	}{
		{"ok", func(q *Question) {}, ""},
		{"empty topic", func(q *Question) { q.Topic = "  " }, "topic"},
		{"bad level", func(q *Question) { q.Level = "D" }, "level"},
		{"empty prompt", func(q *Question) { q.Prompt = "" }, "prompt"},
		{"one option", func(q *Question) { q.Body.(*Choice).Options = []string{"a"} }, "options"},
		{"empty option", func(q *Question) { q.Body.(*Choice).Options = []string{"a", " "} }, "options"},
		{"no correct", func(q *Question) { q.Body.(*Choice).Correct = nil }, "correct"},
		{"correct out of range", func(q *Question) { q.Body.(*Choice).Correct = []int{3} }, "correct"},
		{"single with two correct", func(q *Question) { q.Body.(*Choice).Correct = []int{0, 1} }, "correct"},
		{"no body", func(q *Question) { q.Body = nil }, "kind"},
		{"manual ok", func(q *Question) { q.Body = &Open{Format: KindShortAnswer} }, ""},
		{"manual with choice kind", func(q *Question) { q.Body = &Open{Format: KindMultipleChoice} }, "kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid()
			tt.mutate(&q)
			err := q.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestJSONDropsForeignFields(t *testing.T) {
	raw := `{"id":"q1","ip":"X","kind":"short-answer","level":"S","prompt":"p",
		"options":["a","b"],"correct":[1],"reference":"ref"}`

	var q Question
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	o, ok := q.Open()
	require.True(t, ok)
	assert.Equal(t, "ref", o.Reference)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "options")
	assert.Contains(t, string(out), `"ip":"X"`)
}

func TestJSONUnknownKind(t *testing.T) {
	var q Question
	err := json.Unmarshal([]byte(`{"id":"q1","kind":"essay"}`), &q)
	assert.Error(t, err)
}

func TestTopicsUnion(t *testing.T) {
	bank := Bank{
		{ID: "1", Topic: "Networks"},
		{ID: "2", Topic: "Algebra"},
		{ID: "3", Topic: "Networks"},
	}
	hints := HintMap{"Geometry": "", "Algebra": "factor first"}

	assert.Equal(t, []string{"Algebra", "Geometry", "Networks"}, Topics(bank, hints))
}

func TestBankLookup(t *testing.T) {
	bank := Bank{{ID: "a", Topic: "X"}, {ID: "b", Topic: "Y"}}

	q, ok := bank.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "Y", q.Topic)

	_, ok = bank.Lookup("zzz")
	assert.False(t, ok)
}
