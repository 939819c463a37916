package render

import "github.com/charmbracelet/lipgloss"

// Palette is the colour scheme of rendered tables.
type Palette struct {
	Header lipgloss.Color
	Border lipgloss.Color
	Badge  lipgloss.Color
	Null   lipgloss.Color
	Muted  lipgloss.Color
	Text   lipgloss.Color
}

// DarkPalette is the default palette.
var DarkPalette = Palette{
	Header: lipgloss.Color("#7C3AED"), // Purple
	Border: lipgloss.Color("#334155"), // Slate
	Badge:  lipgloss.Color("#06B6D4"), // Cyan
	Null:   lipgloss.Color("#94A3B8"),
	Muted:  lipgloss.Color("#94A3B8"),
	Text:   lipgloss.Color("#F8FAFC"),
}

// LightPalette suits light terminal backgrounds.
var LightPalette = Palette{
	Header: lipgloss.Color("#5A56E0"),
	Border: lipgloss.Color("#9B9B9B"),
	Badge:  lipgloss.Color("#02BA84"),
	Null:   lipgloss.Color("#9B9B9B"),
	Muted:  lipgloss.Color("#9B9B9B"),
	Text:   lipgloss.Color("#1E293B"),
}

type styles struct {
	title  lipgloss.Style
	badge  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	null   lipgloss.Style
	border lipgloss.Style
	footer lipgloss.Style
}

func newStyles(p Palette) styles {
	return styles{
		title: lipgloss.NewStyle().
			Foreground(p.Text).
			Bold(true).
			MarginRight(1),
		badge: lipgloss.NewStyle().
			Foreground(p.Badge).
			Bold(true),
		header: lipgloss.NewStyle().
			Foreground(p.Header).
			Bold(true).
			Padding(0, 1),
		cell: lipgloss.NewStyle().
			Foreground(p.Text).
			Padding(0, 1),
		null: lipgloss.NewStyle().
			Foreground(p.Null).
			Italic(true).
			Padding(0, 1),
		border: lipgloss.NewStyle().
			Foreground(p.Border),
		footer: lipgloss.NewStyle().
			Foreground(p.Muted),
	}
}
