package session

// Phase is the stage of a quiz session.
type Phase int

const (
	PhasePicking    Phase = iota // Choosing questions
	PhaseRunning                 // Answering
	PhaseConfirming              // References revealed, awaiting finish
	PhaseFinished                // Score frozen
)

func (p Phase) String() string {
	switch p {
	case PhasePicking:
		return "picking"
	case PhaseRunning:
		return "running"
	case PhaseConfirming:
		return "confirming"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ChoicesEditable reports whether the UI should let the player change
// multiple-choice selections. The session itself accepts answers in every
// phase after picking.
func (p Phase) ChoicesEditable() bool {
	return p == PhaseRunning
}

// GradesEditable reports whether the UI should offer manual grading, which
// usually happens once references are revealed.
func (p Phase) GradesEditable() bool {
	return p == PhaseRunning || p == PhaseConfirming
}
