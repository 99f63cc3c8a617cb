package session

import (
	"errors"
	"fmt"

	"github.com/abhisek/ipquiz/internal/quiz"
)

const (
	// MaxTotal is the most questions a basket may hold.
	MaxTotal = 5

	// MaxPerTopic is the most questions a basket may hold from one topic.
	MaxPerTopic = 2
)

var (
	ErrTotalCap = fmt.Errorf("total cap reached: at most %d questions per session", MaxTotal)
	ErrTopicCap = fmt.Errorf("per-topic cap reached: at most %d questions per topic", MaxPerTopic)
)

// Lookup resolves a question ID against the current bank.
type Lookup func(id string) (quiz.Question, bool)

// Basket is the ordered selection of question IDs for one session.
// Counts are derived from the ID list on every call.
type Basket struct {
	ids []string
}

// IDs returns a copy of the selection in insertion order.
func (b *Basket) IDs() []string {
	return append([]string(nil), b.ids...)
}

// Len is the total number of selected IDs, including ones whose question
// has since been deleted.
func (b *Basket) Len() int {
	return len(b.ids)
}

// Contains reports whether id is selected.
func (b *Basket) Contains(id string) bool {
	return b.indexOf(id) >= 0
}

func (b *Basket) indexOf(id string) int {
	for i, v := range b.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// TopicCount counts selected questions in topic. IDs that no longer resolve
// are not counted.
func (b *Basket) TopicCount(topic string, lookup Lookup) int {
	n := 0
	for _, id := range b.ids {
		if q, ok := lookup(id); ok && q.Topic == topic {
			n++
		}
	}
	return n
}

// TopicCounts returns the per-topic count for every topic in the basket.
func (b *Basket) TopicCounts(lookup Lookup) map[string]int {
	counts := make(map[string]int)
	for _, id := range b.ids {
		if q, ok := lookup(id); ok {
			counts[q.Topic]++
		}
	}
	return counts
}

// Toggle removes id when selected, otherwise tries to add it. Adding an ID
// that does not resolve is a no-op. On a cap error the basket is unchanged.
// The returned bool reports whether id is selected afterwards.
func (b *Basket) Toggle(id string, lookup Lookup) (bool, error) {
	if i := b.indexOf(id); i >= 0 {
		b.ids = append(b.ids[:i:i], b.ids[i+1:]...)
		return false, nil
	}

	q, ok := lookup(id)
	if !ok {
		return false, nil
	}
	if len(b.ids) >= MaxTotal {
		return false, ErrTotalCap
	}
	if b.TopicCount(q.Topic, lookup) >= MaxPerTopic {
		return false, fmt.Errorf("%w (%s)", ErrTopicCap, q.Topic)
	}
	b.ids = append(b.ids, id)
	return true, nil
}

// Clear empties the basket.
func (b *Basket) Clear() {
	b.ids = nil
}

// IsCapError reports whether err is one of the basket cap errors.
func IsCapError(err error) bool {
	return errors.Is(err, ErrTotalCap) || errors.Is(err, ErrTopicCap)
}
