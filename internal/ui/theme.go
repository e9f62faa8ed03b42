package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"idlepond/internal/catalog"
	"idlepond/internal/catch"
)

const (
	IconFish     = "🐟"
	IconGarbage  = "🥫"
	IconTreasure = "💎"
	IconRod      = "🎣"
	IconCoin     = "🪙"
	IconBook     = "📖"
	IconMoon     = "🌙"
	IconSparkle  = "✨"
	IconWarn     = "⚠️"
	IconError    = "🧨"
	IconBox      = "📦"
	IconWave     = "🌊"
)

var (
	cPrimary = lipgloss.Color("39")  // water blue
	cAccent  = lipgloss.Color("45")  // cyan
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
	cPurple  = lipgloss.Color("135")
	cPink    = lipgloss.Color("205")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func RarityText(r catalog.Rarity) string {
	var st lipgloss.Style
	switch r {
	case catalog.Common:
		st = Muted
	case catalog.Rare:
		st = H2
	case catalog.Epic:
		st = lipgloss.NewStyle().Bold(true).Foreground(cPurple)
	case catalog.Legendary:
		st = Gold
	case catalog.Mythic:
		st = lipgloss.NewStyle().Bold(true).Foreground(cPink)
	default:
		st = Muted
	}
	return st.Render(r.String())
}

func QualityText(q catch.Quality) string {
	switch q {
	case catch.Poor:
		return Muted.Render(q.String())
	case catch.Fine, catch.Average:
		return q.String()
	case catch.Good:
		return Good.Render(q.String())
	case catch.Excellent:
		return H2.Render(q.String())
	case catch.Flawless:
		return Gold.Render(q.String())
	}
	return q.String()
}

func CategoryIcon(c catch.Category) string {
	switch c {
	case catch.CategoryFish:
		return IconFish
	case catch.CategoryGarbage:
		return IconGarbage
	case catch.CategoryTreasure:
		return IconTreasure
	}
	return IconWave
}

// Coins renders an amount with the coin icon.
func Coins(n int) string {
	return Gold.Render(fmt.Sprintf("%s %d", IconCoin, n))
}

// Bar draws a fixed-width progress bar for cur out of max.
func Bar(cur, max, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := 0
	if max > 0 {
		filled = cur * width / max
	}
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}
