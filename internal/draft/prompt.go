package draft

import (
	"fmt"
	"strings"

	"github.com/abhisek/ipquiz/internal/quiz"
)

const systemPrompt = `You write questions for a topic-based quiz game.

Rules:
- Write exactly one question about the given topic at the given difficulty level.
  Levels from hardest to easiest: S, A, B, C.
- The prompt must be self-contained and answerable without outside context.
- multiple-choice: give 3 to 5 short options. Mark the correct indices (zero-based).
  Set "multiple" to true only when more than one option is correct.
  Leave "reference" empty.
- Any other kind: leave "options" and "correct" empty and "multiple" false.
  Put a concise model answer in "reference" for the person grading.
- reading-comprehension: include the passage in the prompt, followed by the question.
- fill-in-blank: mark the blank with ____ in the prompt.
- Do not repeat or rephrase any question from the "already in the bank" list.`

const hintSystemPrompt = `You write study hints for a topic-based quiz game.
A hint is one or two sentences telling a player what to revise before
answering questions on the topic. Never give away an answer.`

func buildUserMessage(in Input, maxExisting int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	if in.Hint != "" {
		fmt.Fprintf(&b, "Topic hint: %s\n", in.Hint)
	}
	fmt.Fprintf(&b, "Kind: %s\n", in.Kind)
	fmt.Fprintf(&b, "Level: %s\n", in.Level)
	if in.Guidance != "" {
		fmt.Fprintf(&b, "Author guidance: %s\n", in.Guidance)
	}

	b.WriteString("\nAlready in the bank:\n")
	b.WriteString(numbered(in.Existing, maxExisting))

	if len(in.rejections) > 0 {
		b.WriteString("\n\nYour previous drafts were rejected:\n")
		b.WriteString(numbered(in.rejections, 0))
	}
	return b.String()
}

func buildHintMessage(topic string, questions []quiz.Question, maxExisting int) string {
	prompts := make([]string, 0, len(questions))
	for _, q := range questions {
		prompts = append(prompts, q.Prompt)
	}
	return fmt.Sprintf("Topic: %s\n\nQuestions on this topic:\n%s", topic, numbered(prompts, maxExisting))
}

// numbered lists the last max items, or all of them when max <= 0.
func numbered(items []string, max int) string {
	if len(items) == 0 {
		return "None"
	}
	if max > 0 && len(items) > max {
		items = items[len(items)-max:]
	}
	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it)
	}
	return strings.TrimRight(b.String(), "\n")
}
