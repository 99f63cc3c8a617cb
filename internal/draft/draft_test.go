package draft

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ipquiz/internal/llm"
	"github.com/abhisek/ipquiz/internal/quiz"
)

func newDrafter(t *testing.T, replies ...llm.MockResponse) (*Drafter, *llm.MockProvider) {
	t.Helper()
	log, _ := test.NewNullLogger()
	mock := llm.NewMockProvider(replies...)
	return New(mock, DefaultConfig(), log), mock
}

func mcReply(prompt string, correct ...int) llm.MockResponse {
	return llm.MockJSON(output{
		Prompt:  prompt,
		Options: []string{"22", "80", "443", "8080"},
		Correct: append([]int{}, correct...),
	})
}

func TestDraftMultipleChoice(t *testing.T) {
	d, mock := newDrafter(t, mcReply("Which port does HTTPS use by default?", 2))

	q, err := d.Draft(context.Background(), Input{
		Topic: "Networking", Kind: quiz.KindMultipleChoice, Level: quiz.LevelB,
		Hint: "Know your well-known ports", Existing: []string{"What does DNS stand for?"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, "Networking", q.Topic)
	assert.Equal(t, quiz.LevelB, q.Level)
	c, ok := q.Choice()
	require.True(t, ok)
	assert.Equal(t, []int{2}, c.Correct)
	assert.False(t, c.Multi)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, QuestionSchema, req.Schema)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "Topic: Networking")
	assert.Contains(t, msg, "Kind: multiple-choice")
	assert.Contains(t, msg, "Topic hint: Know your well-known ports")
	assert.Contains(t, msg, "1. What does DNS stand for?")
}

func TestDraftMultiSelectInferred(t *testing.T) {
	d, _ := newDrafter(t, mcReply("Which ports are commonly used for web traffic?", 1, 2, 3))
	q, err := d.Draft(context.Background(), Input{Topic: "Networking", Kind: quiz.KindMultipleChoice, Level: quiz.LevelA})
	require.NoError(t, err)
	c, _ := q.Choice()
	assert.True(t, c.Multi)
	assert.Equal(t, []int{1, 2, 3}, c.Correct)
}

func TestDraftOpenKind(t *testing.T) {
	d, _ := newDrafter(t, llm.MockJSON(output{
		Prompt:    "Explain why TCP needs a three-way handshake.",
		Options:   []string{},
		Correct:   []int{},
		Reference: "  Both sides must agree on initial sequence numbers.  ",
	}))
	q, err := d.Draft(context.Background(), Input{Topic: "Networking", Kind: quiz.KindShortAnswer, Level: quiz.LevelS})
	require.NoError(t, err)
	o, ok := q.Open()
	require.True(t, ok)
	assert.Equal(t, quiz.KindShortAnswer, o.Format)
	assert.Equal(t, "Both sides must agree on initial sequence numbers.", o.Reference)
}

func TestDraftRetriesDuplicate(t *testing.T) {
	d, mock := newDrafter(t,
		mcReply("what does DNS stand for", 0),
		mcReply("Which port does SSH use?", 0),
	)
	q, err := d.Draft(context.Background(), Input{
		Topic: "Networking", Kind: quiz.KindMultipleChoice, Level: quiz.LevelC,
		Existing: []string{"What does DNS stand for?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Which port does SSH use?", q.Prompt)

	require.Equal(t, 2, mock.CallCount())
	assert.Contains(t, mock.Calls[1].Messages[0].Content, "previous drafts were rejected")
}

func TestDraftGivesUpAfterAttempts(t *testing.T) {
	d, mock := newDrafter(t,
		mcReply("Pick the odd one out"), // no correct option
		mcReply("Pick the odd one out"),
		mcReply("never requested", 0),
	)
	_, err := d.Draft(context.Background(), Input{Topic: "Misc", Kind: quiz.KindMultipleChoice, Level: quiz.LevelB})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quiz", ve.Validator)
	assert.Equal(t, 2, mock.CallCount())
}

func TestDraftProviderErrorNotRetried(t *testing.T) {
	d, mock := newDrafter(t, llm.MockResponse{Err: &llm.ErrRequestRejected{Status: 401, Err: errors.New("bad key")}})
	_, err := d.Draft(context.Background(), Input{Topic: "Misc", Kind: quiz.KindShortAnswer, Level: quiz.LevelB})

	var rejected *llm.ErrRequestRejected
	assert.ErrorAs(t, err, &rejected)
	assert.Equal(t, 1, mock.CallCount())
}

func TestDraftRejectsBadInput(t *testing.T) {
	d, mock := newDrafter(t)
	ctx := context.Background()

	_, err := d.Draft(ctx, Input{Topic: "  ", Kind: quiz.KindShortAnswer, Level: quiz.LevelB})
	assert.Error(t, err)
	_, err = d.Draft(ctx, Input{Topic: "X", Kind: "essay", Level: quiz.LevelB})
	assert.Error(t, err)
	_, err = d.Draft(ctx, Input{Topic: "X", Kind: quiz.KindShortAnswer, Level: "D"})
	assert.Error(t, err)
	assert.Zero(t, mock.CallCount())
}

func TestDraftHint(t *testing.T) {
	d, mock := newDrafter(t, llm.MockJSON(map[string]string{"hint": " Revise the OSI layers. "}))
	hint, err := d.DraftHint(context.Background(), "Networking", []quiz.Question{
		quiz.New("Networking", quiz.KindShortAnswer, quiz.LevelA, "Name the transport layer protocols."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Revise the OSI layers.", hint)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Name the transport layer protocols.")
}

func TestDraftHintEmpty(t *testing.T) {
	d, _ := newDrafter(t, llm.MockJSON(map[string]string{"hint": "   "}))
	_, err := d.DraftHint(context.Background(), "Networking", nil)
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	long := quiz.New("X", quiz.KindShortAnswer, quiz.LevelA, strings.Repeat("x", maxPromptLen+1))
	assert.NotNil(t, (&StructuralValidator{}).Validate(long, Input{}))

	mc := quiz.New("X", quiz.KindMultipleChoice, quiz.LevelA, "Pick")
	c, _ := mc.Choice()
	c.Options = []string{"a", "b", "c", "d", "e", "f", "g"}
	c.Correct = []int{0}
	assert.NotNil(t, (&StructuralValidator{}).Validate(mc, Input{}))

	noTopic := quiz.New("", quiz.KindShortAnswer, quiz.LevelA, "Explain")
	ve := (&QuizValidator{}).Validate(noTopic, Input{})
	require.NotNil(t, ve)
	assert.False(t, ve.Retryable)

	dup := quiz.New("X", quiz.KindShortAnswer, quiz.LevelA, "What is  an IP-address?")
	assert.NotNil(t, (&DuplicateValidator{}).Validate(dup, Input{Existing: []string{"what is an IP address"}}))
	assert.Nil(t, (&DuplicateValidator{}).Validate(dup, Input{Existing: []string{"What is a MAC address?"}}))
}

func TestNumbered(t *testing.T) {
	assert.Equal(t, "None", numbered(nil, 3))
	assert.Equal(t, "1. c\n2. d", numbered([]string{"a", "b", "c", "d"}, 2))
}
