package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// StyleTheme is the color scheme for the grid, modals and status bar
type StyleTheme struct {
	Name          string
	Cyan          lipgloss.Color // Primary accent, borders of the focused card
	Purple        lipgloss.Color // Metadata and plain tags
	VibrantPurple lipgloss.Color // Errors and gradient end
	Green         lipgloss.Color // Success and video markers
	Red           lipgloss.Color // Breaking tags
	Orange        lipgloss.Color // Load-more affordance
	Gray          lipgloss.Color // Muted text
	DarkGray      lipgloss.Color // Borders and bars
	White         lipgloss.Color // Main text
}

// CleanCyberTheme is the default theme
var CleanCyberTheme = StyleTheme{
	Name:          "clean_cyber",
	Cyan:          lipgloss.Color("#00D9FF"),
	Purple:        lipgloss.Color("#E6CCFF"),
	VibrantPurple: lipgloss.Color("#9F4DFF"),
	Green:         lipgloss.Color("#00FF88"),
	Red:           lipgloss.Color("#FF0066"),
	Orange:        lipgloss.Color("#FF8800"),
	Gray:          lipgloss.Color("#666666"),
	DarkGray:      lipgloss.Color("#333333"),
	White:         lipgloss.Color("#EEEEEE"),
}

// MonokaiProTheme is a warm dark theme
var MonokaiProTheme = StyleTheme{
	Name:          "monokai_pro",
	Cyan:          lipgloss.Color("#78DCE8"),
	Purple:        lipgloss.Color("#AB9DF2"),
	VibrantPurple: lipgloss.Color("#FF6188"),
	Green:         lipgloss.Color("#A9DC76"),
	Red:           lipgloss.Color("#FF6188"),
	Orange:        lipgloss.Color("#FC9867"),
	Gray:          lipgloss.Color("#727072"),
	DarkGray:      lipgloss.Color("#403E41"),
	White:         lipgloss.Color("#FCFCFA"),
}

// LightTheme uses softer tones that stay readable on dark terminals
var LightTheme = StyleTheme{
	Name:          "light",
	Cyan:          lipgloss.Color("#06B6D4"),
	Purple:        lipgloss.Color("#8B5CF6"),
	VibrantPurple: lipgloss.Color("#EC4899"),
	Green:         lipgloss.Color("#22C55E"),
	Red:           lipgloss.Color("#F43F5E"),
	Orange:        lipgloss.Color("#FB923C"),
	Gray:          lipgloss.Color("#64748B"),
	DarkGray:      lipgloss.Color("#475569"),
	White:         lipgloss.Color("#F1F5F9"),
}

// AvailableThemes is the cycling order for :theme
var AvailableThemes = []StyleTheme{
	CleanCyberTheme,
	MonokaiProTheme,
	LightTheme,
}

// ThemeByName finds a theme, falling back to CleanCyberTheme
func ThemeByName(name string) (StyleTheme, bool) {
	for _, t := range AvailableThemes {
		if t.Name == name {
			return t, true
		}
	}
	return CleanCyberTheme, false
}

// NextTheme returns the theme after current in AvailableThemes
func NextTheme(current StyleTheme) StyleTheme {
	for i, t := range AvailableThemes {
		if t.Name == current.Name {
			return AvailableThemes[(i+1)%len(AvailableThemes)]
		}
	}
	return AvailableThemes[0]
}

func (t StyleTheme) TextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.White)
}

func (t StyleTheme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Gray)
}

func (t StyleTheme) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Green)
}

func (t StyleTheme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.VibrantPurple).
		Bold(true)
}

func (t StyleTheme) SelectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Cyan).
		Bold(true)
}

// specialTags get a fixed color regardless of position
var specialTags = map[string]func(StyleTheme) lipgloss.Color{
	"Breaking":  func(t StyleTheme) lipgloss.Color { return t.Red },
	"News":      func(t StyleTheme) lipgloss.Color { return t.Cyan },
	"ข่าว":      func(t StyleTheme) lipgloss.Color { return t.Cyan },
	"AI":        func(t StyleTheme) lipgloss.Color { return t.VibrantPurple },
	"Hollywood": func(t StyleTheme) lipgloss.Color { return lipgloss.Color("#FFD166") },
	"Kpop":      func(t StyleTheme) lipgloss.Color { return lipgloss.Color("#FF6FB5") },
	"Shorts":    func(t StyleTheme) lipgloss.Color { return t.Orange },
}

// tagPalette cycles by tag position for everything else
func (t StyleTheme) tagPalette() []lipgloss.Color {
	return []lipgloss.Color{t.Green, t.Cyan, t.Purple, lipgloss.Color("#FF6FB5"), t.Orange}
}

// TagColor maps a tag at position index to its color
func (t StyleTheme) TagColor(tag string, index int) lipgloss.Color {
	if color, ok := specialTags[tag]; ok {
		return color(t)
	}
	palette := t.tagPalette()
	if index < 0 {
		index = -index
	}
	return palette[index%len(palette)]
}

// TagStyle renders a tag chip; selected tags are shown reversed
func (t StyleTheme) TagStyle(tag string, index int, selected bool) lipgloss.Style {
	color := t.TagColor(tag, index)
	style := lipgloss.NewStyle().Foreground(color)
	if selected {
		style = style.Reverse(true).Bold(true)
	}
	return style
}

// ToGlamourStyle converts the theme to a glamour style for the player's text pane
func (t StyleTheme) ToGlamourStyle() ansi.StyleConfig {
	style := styles.DraculaStyleConfig

	// No document margin inside modals
	style.Document.Margin = uintPtr(0)
	style.Document.StylePrimitive.Color = stringPtr(string(t.White))

	style.Heading.StylePrimitive.Color = stringPtr(string(t.Cyan))
	style.Heading.StylePrimitive.Bold = boolPtr(true)
	style.H1.StylePrimitive.Prefix = ""
	style.H1.Prefix = "▸ "
	style.H1.Format = ""
	style.H2.Prefix = "▸ "
	style.H2.Format = ""
	style.H3.Prefix = "▸ "
	style.H3.Format = ""

	style.Link.Color = stringPtr(string(t.Purple))
	style.LinkText.Color = stringPtr(string(t.Purple))
	style.Code.Color = stringPtr(string(t.Green))
	style.Emph.Color = stringPtr(string(t.Orange))
	style.Strong.Color = stringPtr(string(t.Cyan))

	style.Item.BlockPrefix = "• "
	style.Item.Color = stringPtr(string(t.White))
	style.List.LevelIndent = 2

	style.BlockQuote.StylePrimitive.Color = stringPtr(string(t.Gray))
	style.BlockQuote.StylePrimitive.Italic = boolPtr(true)

	return style
}

func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }
func boolPtr(b bool) *bool       { return &b }

// RenderWithGradientBackground renders text padded or cut to width over a gradient
func RenderWithGradientBackground(text string, width int, startColor, endColor string) string {
	runes := []rune(text)
	if len(runes) < width {
		runes = append(runes, []rune(strings.Repeat(" ", width-len(runes)))...)
	} else {
		runes = runes[:width]
	}

	var result strings.Builder
	for i, r := range runes {
		position := float64(i) / float64(max(width-1, 1))
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(InterpolateColor(startColor, endColor, position))).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}

// InterpolateColor blends two hex colors; position is clamped to [0,1]
func InterpolateColor(startColor, endColor string, position float64) string {
	startR, startG, startB, err := parseHexColor(startColor)
	if err != nil {
		return startColor
	}
	endR, endG, endB, err := parseHexColor(endColor)
	if err != nil {
		return startColor
	}

	position = min(max(position, 0), 1)

	r := int(float64(startR) + (float64(endR-startR) * position))
	g := int(float64(startG) + (float64(endG-startG) * position))
	b := int(float64(startB) + (float64(endB-startB) * position))

	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// parseHexColor parses "#RRGGBB" or "RRGGBB"
func parseHexColor(hexColor string) (int, int, int, error) {
	hexColor = strings.TrimPrefix(hexColor, "#")
	if len(hexColor) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color format")
	}

	value, err := strconv.ParseUint(hexColor, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color: %w", err)
	}

	return int(value >> 16 & 0xFF), int(value >> 8 & 0xFF), int(value & 0xFF), nil
}
