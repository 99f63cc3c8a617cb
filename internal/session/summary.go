package session

import (
	"time"

	"github.com/abhisek/ipquiz/internal/quiz"
)

// Summary is the frozen result of a finished session.
type Summary struct {
	SessionID  string
	StartedAt  time.Time
	FinishedAt time.Time
	Result
	Items []ItemResult
}

// ItemResult is one basket entry in the summary.
type ItemResult struct {
	QuestionID string
	Topic      string
	Level      quiz.Level
	Kind       quiz.Kind
	Prompt     string
	Awarded    int
	Points     int
	// Missing is set when the question was deleted from the bank.
	Missing bool
}

// Duration is the time between start and finish.
func (s *Summary) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Percent is Total as a share of Possible, 0 when nothing was possible.
func (r Result) Percent() float64 {
	if r.Possible == 0 {
		return 0
	}
	return float64(r.Total) / float64(r.Possible) * 100
}

// BuildItems lists per-question results in basket order.
func BuildItems(basket []string, lookup Lookup, answers map[string]Answer) []ItemResult {
	items := make([]ItemResult, 0, len(basket))
	for _, id := range basket {
		q, ok := lookup(id)
		if !ok {
			items = append(items, ItemResult{QuestionID: id, Missing: true})
			continue
		}
		items = append(items, ItemResult{
			QuestionID: id,
			Topic:      q.Topic,
			Level:      q.Level,
			Kind:       q.Kind(),
			Prompt:     q.Prompt,
			Awarded:    Award(q, answers[id]),
			Points:     q.Points(),
		})
	}
	return items
}
