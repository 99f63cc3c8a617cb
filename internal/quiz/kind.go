package quiz

import "fmt"

// Kind identifies how a question is presented and graded.
type Kind string

const (
	KindMultipleChoice       Kind = "multiple-choice"
	KindFillInBlank          Kind = "fill-in-blank"
	KindShortAnswer          Kind = "short-answer"
	KindReadingComprehension Kind = "reading-comprehension"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{
	KindMultipleChoice,
	KindFillInBlank,
	KindShortAnswer,
	KindReadingComprehension,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Manual reports whether answers to this kind are graded by an administrator.
func (k Kind) Manual() bool {
	return k != KindMultipleChoice
}

// Label returns a short human-readable name.
func (k Kind) Label() string {
	switch k {
	case KindMultipleChoice:
		return "Multiple choice"
	case KindFillInBlank:
		return "Fill in the blank"
	case KindShortAnswer:
		return "Short answer"
	case KindReadingComprehension:
		return "Reading comprehension"
	default:
		return string(k)
	}
}

// ParseKind converts s into a Kind. Underscores are accepted in place of
// hyphens so that CLI flags like "short_answer" work.
func ParseKind(s string) (Kind, error) {
	k := Kind(normalizeToken(s))
	if !k.Valid() {
		return "", fmt.Errorf("unknown question kind %q", s)
	}
	return k, nil
}

func normalizeToken(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c == '_' || c == ' ':
			b[i] = '-'
		case c >= 'A' && c <= 'Z':
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
