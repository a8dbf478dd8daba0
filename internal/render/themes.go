package render

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Glamour styles accepted for markdown.style
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// StyleNames lists the built-in markdown styles
func StyleNames() []string {
	return []string{StyleDark, StyleLight, StyleDracula, StyleTokyoNight, StyleNoTTY, StyleASCII}
}

// ValidStyle reports whether style is built in or names an existing file
func ValidStyle(style string) bool {
	for _, name := range StyleNames() {
		if style == name {
			return true
		}
	}
	info, err := os.Stat(style)
	return err == nil && !info.IsDir()
}

// TUITheme is the palette used by the chat interface
type TUITheme struct {
	Name string

	Border    lipgloss.Color
	Primary   lipgloss.Color // assistant label, focused input
	Secondary lipgloss.Color // user label
	Accent    lipgloss.Color // spinner, streaming marker
	Error     lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

var (
	TokyoNightTheme = TUITheme{
		Name:      "tokyonight",
		Border:    lipgloss.Color("#414868"),
		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Error:     lipgloss.Color("#f7768e"),
		Text:      lipgloss.Color("#c0caf5"),
		TextDim:   lipgloss.Color("#565f89"),
	}

	CatppuccinTheme = TUITheme{
		Name:      "catppuccin",
		Border:    lipgloss.Color("#45475a"),
		Primary:   lipgloss.Color("#89b4fa"),
		Secondary: lipgloss.Color("#a6e3a1"),
		Accent:    lipgloss.Color("#cba6f7"),
		Error:     lipgloss.Color("#f38ba8"),
		Text:      lipgloss.Color("#cdd6f4"),
		TextDim:   lipgloss.Color("#6c7086"),
	}

	NordTheme = TUITheme{
		Name:      "nord",
		Border:    lipgloss.Color("#4c566a"),
		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#b48ead"),
		Error:     lipgloss.Color("#bf616a"),
		Text:      lipgloss.Color("#eceff4"),
		TextDim:   lipgloss.Color("#7b88a1"),
	}
)

// TUIThemes lists the available interface palettes
func TUIThemes() []TUITheme {
	return []TUITheme{TokyoNightTheme, CatppuccinTheme, NordTheme}
}

// TUIThemeByName looks up a palette, falling back to Tokyo Night
func TUIThemeByName(name string) (TUITheme, bool) {
	for _, theme := range TUIThemes() {
		if theme.Name == name {
			return theme, true
		}
	}
	return TokyoNightTheme, false
}

// TUIThemeNames returns the palette names
func TUIThemeNames() []string {
	themes := TUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
