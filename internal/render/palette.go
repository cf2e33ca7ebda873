package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colors of the chat view
type Palette struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// User bubbles
	User lipgloss.Color
	// Assistant bubbles and the spinner
	Assistant lipgloss.Color
	// Progress status labels
	Status lipgloss.Color
	// Error-kind messages
	Error lipgloss.Color

	Text  lipgloss.Color
	Muted lipgloss.Color
}

var palettes = []Palette{
	{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",
		Background:  lipgloss.Color("#1a1b26"),
		Surface:     lipgloss.Color("#24283b"),
		Border:      lipgloss.Color("#414868"),
		User:        lipgloss.Color("#9ece6a"),
		Assistant:   lipgloss.Color("#7aa2f7"),
		Status:      lipgloss.Color("#e0af68"),
		Error:       lipgloss.Color("#f7768e"),
		Text:        lipgloss.Color("#c0caf5"),
		Muted:       lipgloss.Color("#565f89"),
	},
	{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - Warm dark theme with pastel colors",
		Background:  lipgloss.Color("#1e1e2e"),
		Surface:     lipgloss.Color("#313244"),
		Border:      lipgloss.Color("#45475a"),
		User:        lipgloss.Color("#a6e3a1"),
		Assistant:   lipgloss.Color("#89b4fa"),
		Status:      lipgloss.Color("#f9e2af"),
		Error:       lipgloss.Color("#f38ba8"),
		Text:        lipgloss.Color("#cdd6f4"),
		Muted:       lipgloss.Color("#6c7086"),
	},
	{
		Name:        "nord",
		Description: "Nord - Arctic-inspired theme with cool tones",
		Background:  lipgloss.Color("#2e3440"),
		Surface:     lipgloss.Color("#3b4252"),
		Border:      lipgloss.Color("#4c566a"),
		User:        lipgloss.Color("#a3be8c"),
		Assistant:   lipgloss.Color("#88c0d0"),
		Status:      lipgloss.Color("#ebcb8b"),
		Error:       lipgloss.Color("#bf616a"),
		Text:        lipgloss.Color("#eceff4"),
		Muted:       lipgloss.Color("#7b88a1"),
	},
	{
		Name:        "dracula",
		Description: "Dracula - Dark theme with vibrant colors",
		Background:  lipgloss.Color("#282a36"),
		Surface:     lipgloss.Color("#44475a"),
		Border:      lipgloss.Color("#6272a4"),
		User:        lipgloss.Color("#50fa7b"),
		Assistant:   lipgloss.Color("#8be9fd"),
		Status:      lipgloss.Color("#f1fa8c"),
		Error:       lipgloss.Color("#ff5555"),
		Text:        lipgloss.Color("#f8f8f2"),
		Muted:       lipgloss.Color("#6272a4"),
	},
}

// DefaultPalette returns the palette used when none is configured
func DefaultPalette() Palette {
	return palettes[0]
}

// PaletteByName looks up a palette, ignoring case
func PaletteByName(name string) (Palette, bool) {
	for _, p := range palettes {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Palette{}, false
}

// PaletteOrDefault returns the named palette, or the default one
func PaletteOrDefault(name string) Palette {
	if p, ok := PaletteByName(name); ok {
		return p
	}
	return DefaultPalette()
}

// PaletteNames returns the names of all palettes
func PaletteNames() []string {
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.Name
	}
	return names
}
