package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/linkreel/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	muted lipgloss.Style
	frame lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		muted: NewStyle(h),
		frame: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(h)).Padding(1, 2),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Swatch renders a small block in the playlist's background color, or "" when it has none.
func Swatch(a models.Appearance) string {
	switch a.Kind {
	case models.BackgroundColor:
		if a.Color == nil {
			return ""
		}
		hex := a.Color.Hex()[:7]
		return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("   ")
	case models.BackgroundPhoto:
		return styles.muted.Render(fmt.Sprintf("[photo %s]", byteSize(len(a.Image))))
	default:
		return ""
	}
}

func byteSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
