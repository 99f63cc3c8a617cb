// Package screen defines what the router and app expect from a quiz screen.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ipquiz/internal/ui/layout"
)

// Screen is one page of the terminal UI.
type Screen interface {
	// Init runs when the screen is pushed or swapped in.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, without header and footer.
	View(width, height int) string

	// Title names the screen in the header breadcrumb.
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is implemented by screens with a focused text field. While
// CapturingInput reports true, Esc is delivered to the screen instead of
// popping it.
type InputCapturer interface {
	CapturingInput() bool
}

// Resumer is implemented by screens that refresh when the screens above
// them close, e.g. home reloading the last result after a quiz.
type Resumer interface {
	Resume() tea.Cmd
}

// Leaver is implemented by screens that release state when they leave the
// stack by pop, replace or unwind.
type Leaver interface {
	Leave()
}
