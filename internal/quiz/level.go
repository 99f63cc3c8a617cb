package quiz

import (
	"fmt"
	"strings"
)

// Level is a difficulty tag that maps to a fixed point value.
type Level string

const (
	LevelA Level = "A"
	LevelB Level = "B"
	LevelC Level = "C"
	LevelS Level = "S"
)

// Levels lists all levels in display order.
var Levels = []Level{LevelS, LevelA, LevelB, LevelC}

var levelPoints = map[Level]int{
	LevelA: 3,
	LevelB: 2,
	LevelC: 1,
	LevelS: 5,
}

// Points returns the score awarded for a fully correct answer at this level.
// Unknown levels are worth nothing.
func (l Level) Points() int {
	return levelPoints[l]
}

// Valid reports whether l is one of A, B, C or S.
func (l Level) Valid() bool {
	_, ok := levelPoints[l]
	return ok
}

// ParseLevel parses a level tag, case-insensitively.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown level %q (want one of S, A, B, C)", s)
	}
	return l, nil
}
