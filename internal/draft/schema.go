package draft

import "github.com/abhisek/ipquiz/internal/llm"

// QuestionSchema is the structured output requested for one question. Every
// property is required so strict-mode backends accept it; fields that do not
// apply to the kind come back empty.
var QuestionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "One quiz question with its answer key",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "The question shown to the player. Markdown allowed.",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Answer options for multiple-choice. Empty array otherwise.",
			},
			"correct": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "integer", "minimum": 0},
				"description": "Zero-based indices of the correct options. Empty array when there are no options.",
			},
			"multiple": map[string]any{
				"type":        "boolean",
				"description": "True when more than one option is correct.",
			},
			"reference": map[string]any{
				"type":        "string",
				"description": "Model answer for the grader. Empty for multiple-choice.",
			},
		},
		"required":             []any{"prompt", "options", "correct", "multiple", "reference"},
		"additionalProperties": false,
	},
}

// HintSchema is the structured output requested for a topic hint.
var HintSchema = &llm.Schema{
	Name:        "topic-hint",
	Description: "A short study hint for a quiz topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"description": "One or two sentences pointing the player at what to revise.",
			},
		},
		"required":             []any{"hint"},
		"additionalProperties": false,
	},
}

// output is the decoded QuestionSchema reply.
type output struct {
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options"`
	Correct   []int    `json:"correct"`
	Multiple  bool     `json:"multiple"`
	Reference string   `json:"reference"`
}
