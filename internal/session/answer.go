package session

import (
	"errors"
	"fmt"
	"sort"

	"github.com/abhisek/ipquiz/internal/quiz"
)

// ErrScoreRange rejects a manual score outside 0..points.
var ErrScoreRange = errors.New("score out of range")

// Answer is the recorded response for one question. Chosen applies to
// multiple-choice questions, Score to the manually graded kinds.
//
// As a patch, a nil field means "leave unchanged". Use Choose with no
// arguments to clear a selection.
type Answer struct {
	Chosen []int `json:"chosen,omitempty"`
	Score  *int  `json:"score,omitempty"`
}

// Choose builds a patch that replaces the selected option indices.
func Choose(indices ...int) Answer {
	return Answer{Chosen: append([]int{}, indices...)}
}

// Grade builds a patch that sets the manual score.
func Grade(score int) Answer {
	return Answer{Score: &score}
}

// merge overlays the fields set in patch onto a.
func (a Answer) merge(patch Answer) Answer {
	if patch.Chosen != nil {
		a.Chosen = append([]int{}, patch.Chosen...)
	}
	if patch.Score != nil {
		s := *patch.Score
		a.Score = &s
	}
	return a
}

// CheckScore reports whether patch sets a manual score q cannot award.
// Patches without a score always pass.
func CheckScore(q quiz.Question, patch Answer) error {
	if patch.Score == nil {
		return nil
	}
	if v := *patch.Score; v < 0 || v > q.Points() {
		return fmt.Errorf("%w: %d for a %d-point question", ErrScoreRange, v, q.Points())
	}
	return nil
}

// Has reports whether option i is chosen.
func (a Answer) Has(i int) bool {
	for _, c := range a.Chosen {
		if c == i {
			return true
		}
	}
	return false
}

// Toggled returns a patch that flips option i. With single set, choosing i
// replaces any previous choice.
func (a Answer) Toggled(i int, single bool) Answer {
	if a.Has(i) {
		out := make([]int, 0, len(a.Chosen))
		for _, c := range a.Chosen {
			if c != i {
				out = append(out, c)
			}
		}
		return Answer{Chosen: out}
	}
	if single {
		return Choose(i)
	}
	out := append(append([]int{}, a.Chosen...), i)
	sort.Ints(out)
	return Answer{Chosen: out}
}
