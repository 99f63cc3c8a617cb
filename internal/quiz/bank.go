package quiz

import "sort"

// Bank is an ordered question collection.
type Bank []Question

// Lookup finds a question by ID.
func (b Bank) Lookup(id string) (Question, bool) {
	for _, q := range b {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// ByTopic returns the questions tagged with topic, in bank order.
func (b Bank) ByTopic(topic string) []Question {
	var out []Question
	for _, q := range b {
		if q.Topic == topic {
			out = append(out, q)
		}
	}
	return out
}

// Clone deep-copies the bank.
func (b Bank) Clone() Bank {
	if b == nil {
		return nil
	}
	out := make(Bank, len(b))
	for i, q := range b {
		out[i] = q.Clone()
	}
	return out
}

// HintMap maps a topic to its markdown hint. An entry with an empty hint
// still makes the topic visible.
type HintMap map[string]string

// Clone copies the map.
func (h HintMap) Clone() HintMap {
	out := make(HintMap, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Topics returns the sorted union of question topics and hinted topics.
func Topics(bank Bank, hints HintMap) []string {
	seen := make(map[string]bool)
	for _, q := range bank {
		if q.Topic != "" {
			seen[q.Topic] = true
		}
	}
	for t := range hints {
		if t != "" {
			seen[t] = true
		}
	}
	topics := make([]string, 0, len(seen))
	for t := range seen {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}
