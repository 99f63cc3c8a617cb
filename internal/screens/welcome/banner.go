package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ipquiz/internal/ui/theme"
)

const bannerArt = `
 ██╗██████╗      ██████╗ ██╗   ██╗██╗███████╗
 ██║██╔══██╗    ██╔═══██╗██║   ██║██║╚══███╔╝
 ██║██████╔╝    ██║   ██║██║   ██║██║  ███╔╝
 ██║██╔═══╝     ██║▄▄ ██║██║   ██║██║ ███╔╝
 ██║██║         ╚██████╔╝╚██████╔╝██║███████╗
 ╚═╝╚═╝          ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝`

const bannerCompact = "I P   Q U I Z"

// bannerMinWidth is the narrowest terminal that fits the block letters.
const bannerMinWidth = 50

// RenderBanner returns the IP QUIZ banner styled in the primary color.
// Uses a compact fallback for narrow terminals.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
