package session

import "github.com/abhisek/ipquiz/internal/quiz"

// Result is the score across a basket.
type Result struct {
	Total int `json:"total"`
	// Possible is the maximum reachable total for the questions that still
	// exist in the bank.
	Possible int                `json:"possible"`
	ByTopic  map[string]int     `json:"by_topic"`
	ByLevel  map[quiz.Level]int `json:"by_level"`
}

// Score computes the score for basket against the bank and recorded answers.
// Missing questions and missing answers contribute zero. It never fails.
func Score(basket []string, lookup Lookup, answers map[string]Answer) Result {
	res := Result{
		ByTopic: make(map[string]int),
		ByLevel: make(map[quiz.Level]int, len(quiz.Levels)),
	}
	for _, l := range quiz.Levels {
		res.ByLevel[l] = 0
	}

	for _, id := range basket {
		q, ok := lookup(id)
		if !ok {
			continue
		}
		awarded := Award(q, answers[id])
		res.Total += awarded
		res.Possible += q.Points()
		res.ByTopic[q.Topic] += awarded
		res.ByLevel[q.Level] += awarded
	}
	return res
}

// Award returns the points earned by ans on q.
//
// Multiple choice is all or nothing: the chosen indices must equal the
// correct set exactly. Manual kinds pass the recorded score through.
func Award(q quiz.Question, ans Answer) int {
	switch b := q.Body.(type) {
	case *quiz.Choice:
		if sameSet(ans.Chosen, b.Correct) {
			return q.Points()
		}
		return 0
	case *quiz.Open:
		if ans.Score != nil {
			return *ans.Score
		}
		return 0
	default:
		return 0
	}
}

// sameSet compares a and b as sets. Duplicates collapse.
func sameSet(a, b []int) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if !bs[v] {
			return false
		}
	}
	return true
}

func toSet(xs []int) map[int]bool {
	s := make(map[int]bool, len(xs))
	for _, x := range xs {
		s[x] = true
	}
	return s
}
