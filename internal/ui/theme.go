package ui

import (
	"charm.land/lipgloss/v2"

	"github.com/pavelanni/quizzer/internal/model"
)

var (
	colorBrand   = lipgloss.Color("#8B5CF6")
	colorHeading = lipgloss.Color("#14B8A6")
	colorStreak  = lipgloss.Color("#F97316")
	colorPass    = lipgloss.Color("#22C55E")
	colorPartial = lipgloss.Color("#EAB308")
	colorFail    = lipgloss.Color("#F43F5E")
	colorText    = lipgloss.Color("#F8FAFC")
	colorMuted   = lipgloss.Color("#94A3B8")
	colorFrame   = lipgloss.Color("#334155")
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorHeading)
	bodyStyle      = lipgloss.NewStyle().Foreground(colorText)
	hintStyle      = lipgloss.NewStyle().Italic(true).Foreground(colorMuted)
	streakStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorStreak)
	correctStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPass)
	incorrectStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFail)

	// question card
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFrame).
			Padding(0, 1)

	progressEmpty = lipgloss.NewStyle().Background(colorFrame)
)

// partialBand is the lowest percentage drawn in the partial colour rather than the fail colour.
const partialBand = 40

// bandStyle fills a bar for a percentage: pass at the correctness
// threshold and above, partial from partialBand, fail below.
func bandStyle(percent int) lipgloss.Style {
	c := colorFail
	switch {
	case float64(percent) >= model.CorrectThreshold*100:
		c = colorPass
	case percent >= partialBand:
		c = colorPartial
	}
	return lipgloss.NewStyle().Background(c)
}
