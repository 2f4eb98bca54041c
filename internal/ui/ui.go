// Package ui holds the terminal styling used by the habit CLI.
//
// Kept intentionally small: a handful of reusable styles and render helpers.
// Styling is skipped entirely when stdout is not a terminal or the NO_COLOR
// convention asks for plain output, so command output stays pipe-friendly.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	cAccent = lipgloss.Color("205") // magenta
	cPass   = lipgloss.Color("42")  // green
	cWarn   = lipgloss.Color("214") // orange
	cFail   = lipgloss.Color("196") // red
	cMuted  = lipgloss.Color("244") // gray
)

var (
	accent = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	pass   = lipgloss.NewStyle().Bold(true).Foreground(cPass)
	warn   = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	fail   = lipgloss.NewStyle().Bold(true).Foreground(cFail)
	muted  = lipgloss.NewStyle().Foreground(cMuted)
	title  = lipgloss.NewStyle().Bold(true)
)

// Plain disables styling. Set at startup; tests flip it directly.
var Plain = detectPlain()

func detectPlain() bool {
	if termenv.EnvNoColor() {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

func render(style lipgloss.Style, s string) string {
	if Plain {
		return s
	}
	return style.Render(s)
}

func RenderAccent(s string) string { return render(accent, s) }

func RenderPass(s string) string { return render(pass, s) }

func RenderWarn(s string) string { return render(warn, s) }

func RenderError(s string) string { return render(fail, s) }

func RenderMuted(s string) string { return render(muted, s) }

func RenderTitle(s string) string { return render(title, s) }

// Heading renders an icon plus title line.
func Heading(icon, text string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return RenderTitle(icon + text)
}

// RenderMark styles a single grid mark for terminal tables. Unset marks
// come out as a dim dot so rows stay visually aligned.
func RenderMark(mark string) string {
	switch mark {
	case "✓":
		return RenderPass(mark)
	case "✗":
		return RenderError(mark)
	default:
		return RenderMuted("·")
	}
}

// ProgressBar renders a fixed-width completion bar for a 0-100 percentage.
func ProgressBar(percentage float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percentage <= 0 {
		return strings.Repeat("░", width)
	}

	filled := int(percentage / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
