package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/ipquiz/internal/ui/theme"
)

// ChoiceList renders the options of a multiple-choice question. Cursor is
// the highlighted row; Chosen marks the player's selection. With Reveal
// set, correct options are marked and wrong picks flagged.
type ChoiceList struct {
	Options []string
	Chosen  func(i int) bool
	Correct func(i int) bool
	Cursor  int
	Reveal  bool
	Focused bool
}

// Move shifts the cursor by delta, clamped to the option range.
func (c *ChoiceList) Move(delta int) {
	if len(c.Options) == 0 {
		return
	}
	c.Cursor = min(max(c.Cursor+delta, 0), len(c.Options)-1)
}

func (c ChoiceList) View(width int) string {
	var b strings.Builder
	for i, opt := range c.Options {
		chosen := c.Chosen != nil && c.Chosen(i)
		box := "[ ]"
		if chosen {
			box = "[x]"
		}

		pointer := "  "
		if c.Focused && i == c.Cursor {
			pointer = "▸ "
		}

		line := fmt.Sprintf("%s%s %c. %s", pointer, box, 'A'+rune(i%26), opt)

		style := theme.Unselected
		switch {
		case c.Reveal && c.Correct != nil && c.Correct(i):
			style = theme.Correct
			line += "  ✓"
		case c.Reveal && chosen:
			style = theme.Incorrect
			line += "  ✗"
		case c.Focused && i == c.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Width(max(width, 0)).Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

