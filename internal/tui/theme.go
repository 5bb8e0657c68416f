package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/catswitch/internal/category"
)

// Catppuccin Mocha palette, https://catppuccin.com/palette
const (
	colorRosewater lipgloss.Color = "#f5e0dc"
	colorFlamingo  lipgloss.Color = "#f2cdcd"
	colorPink      lipgloss.Color = "#f5c2e7"
	colorMauve     lipgloss.Color = "#cba6f7"
	colorRed       lipgloss.Color = "#f38ba8"
	colorPeach     lipgloss.Color = "#fab387"
	colorYellow    lipgloss.Color = "#f9e2af"
	colorGreen     lipgloss.Color = "#a6e3a1"
	colorTeal      lipgloss.Color = "#94e2d5"
	colorSky       lipgloss.Color = "#89dceb"
	colorBlue      lipgloss.Color = "#89b4fa"
	colorLavender  lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
)

const (
	colorBrand  = colorPink
	colorFocus  = colorLavender
	colorMuted  = colorOverlay1
	colorBorder = colorSurface1
)

// categoryColors is indexed by category; Other is muted.
var categoryColors = [category.Count]lipgloss.Color{
	category.Productivity:  colorBlue,
	category.Development:   colorGreen,
	category.Communication: colorTeal,
	category.Media:         colorPeach,
	category.Creativity:    colorMauve,
	category.Utilities:     colorSky,
	category.Education:     colorYellow,
	category.Finance:       colorFlamingo,
	category.Gaming:        colorRed,
	category.Lifestyle:     colorRosewater,
	category.Other:         colorOverlay1,
}

// CategoryColor is the accent used for c.
func CategoryColor(c category.Category) lipgloss.Color {
	if !c.Valid() {
		return colorMuted
	}
	return categoryColors[c]
}

var (
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText).Background(colorSurface1)
	statusStyle   = lipgloss.NewStyle().Italic(true).Foreground(colorFocus)
	helpKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorFocus)
)

func categoryStyle(c category.Category, active bool) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(CategoryColor(c))
	if active {
		return s.Bold(true).Underline(true)
	}
	return s.Faint(true)
}
