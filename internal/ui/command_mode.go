package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nickpending/newsreel/internal/commands"
)

// CommandMode represents the neovim-style command mode
type CommandMode struct {
	active         bool
	input          textinput.Model
	history        []string
	historyIdx     int
	suggestions    []string
	suggestionIdx  int    // Current index in suggestions for cycling
	completionBase string // The base text we're completing from
	registry       *commands.Registry
	arguments      map[string][]string // Completion candidates per command
	width          int
	error          string // Error message to display
}

// clearErrorMsg is sent to clear command error after delay
type clearErrorMsg struct{}

// NewCommandMode creates a new command mode instance
func NewCommandMode() CommandMode {
	ti := textinput.New()
	ti.Placeholder = ""
	ti.CharLimit = 256
	ti.Width = 50
	ti.Prompt = ":"

	return CommandMode{
		input:      ti,
		history:    make([]string, 0, 100),
		historyIdx: -1,
		registry:   commands.NewRegistry(),
		arguments:  map[string][]string{},
		width:      80,
	}
}

// SetWidth updates the width of the command mode display
func (c *CommandMode) SetWidth(width int) {
	c.width = width
	c.input.Width = width - 4
}

// SetArguments replaces the completion candidates for command's argument
func (c *CommandMode) SetArguments(command string, values []string) {
	c.arguments[command] = values
}

// Show activates command mode
func (c *CommandMode) Show() {
	c.active = true
	c.input.Focus()
	c.input.SetValue("")
	c.historyIdx = len(c.history)
	c.error = ""
	c.resetCompletion()
}

// Hide deactivates command mode
func (c *CommandMode) Hide() {
	c.active = false
	c.input.Blur()
	c.input.SetValue("")
	c.historyIdx = -1
	c.error = ""
	c.resetCompletion()
}

func (c *CommandMode) resetCompletion() {
	c.suggestions = nil
	c.suggestionIdx = 0
	c.completionBase = ""
}

// IsActive returns whether command mode is currently active
func (c CommandMode) IsActive() bool {
	return c.active
}

// SetError shows err on the command line until a key is pressed or two seconds pass
func (c *CommandMode) SetError(err string) tea.Cmd {
	c.error = err
	c.active = true
	c.input.Blur()

	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

// Update handles input events for command mode
func (c *CommandMode) Update(msg tea.Msg) (CommandMode, tea.Cmd) {
	if !c.active {
		return *c, nil
	}

	switch msg := msg.(type) {
	case clearErrorMsg:
		if c.error != "" {
			c.Hide()
		}
		return *c, nil

	case tea.KeyMsg:
		// Any key dismisses an error
		if c.error != "" {
			c.Hide()
			return *c, nil
		}

		switch msg.Type {
		case tea.KeyEscape, tea.KeyCtrlC:
			c.Hide()
			return *c, nil

		case tea.KeyEnter:
			line := strings.TrimSpace(c.input.Value())
			if line == "" {
				c.Hide()
				return *c, nil
			}

			c.addToHistory(line)

			parts := parseCommandWithQuotes(line)
			if len(parts) == 0 {
				c.Hide()
				return *c, nil
			}

			c.Hide()
			return *c, c.registry.Execute(parts[0], parts[1:])

		case tea.KeyUp:
			if c.historyIdx > 0 {
				c.historyIdx--
				c.input.SetValue(c.history[c.historyIdx])
				c.input.CursorEnd()
			}
			return *c, nil

		case tea.KeyDown:
			if c.historyIdx < len(c.history)-1 {
				c.historyIdx++
				c.input.SetValue(c.history[c.historyIdx])
				c.input.CursorEnd()
			} else if c.historyIdx == len(c.history)-1 {
				c.historyIdx = len(c.history)
				c.input.SetValue("")
			}
			return *c, nil

		case tea.KeyTab:
			c.cycleCompletion()
			return *c, nil

		case tea.KeyBackspace:
			if c.input.Value() == "" {
				c.Hide()
				return *c, nil
			}
		}
	}

	var cmd tea.Cmd
	oldValue := c.input.Value()
	c.input, cmd = c.input.Update(msg)

	// Typing starts a fresh completion cycle
	if c.input.Value() != oldValue {
		c.resetCompletion()
	}

	return *c, cmd
}

// cycleCompletion fills in the next completion for the current input
func (c *CommandMode) cycleCompletion() {
	current := c.input.Value()
	if current == "" {
		return
	}

	cycling := len(c.suggestions) > 0 && current != c.completionBase &&
		current == c.suggestions[(c.suggestionIdx+len(c.suggestions)-1)%len(c.suggestions)]
	if !cycling {
		c.completionBase = current
		c.suggestions = c.Complete(current)
		c.suggestionIdx = 0
		if len(c.suggestions) == 0 {
			return
		}
	}

	c.input.SetValue(c.suggestions[c.suggestionIdx])
	c.input.CursorEnd()
	c.suggestionIdx = (c.suggestionIdx + 1) % len(c.suggestions)
}

// View renders the command line
func (c CommandMode) View(theme StyleTheme) string {
	if !c.active {
		return ""
	}

	if c.error != "" {
		return lipgloss.NewStyle().
			Foreground(theme.VibrantPurple).
			Width(c.width).
			Padding(0, 1).
			Render(c.error)
	}

	style := lipgloss.NewStyle().
		Foreground(theme.Cyan).
		Width(c.width).
		Padding(0, 1)

	content := c.input.View()

	if len(c.suggestions) > 1 {
		// suggestionIdx already points at the next suggestion
		currentPos := c.suggestionIdx
		if currentPos == 0 {
			currentPos = len(c.suggestions)
		}
		content += fmt.Sprintf(" [%d/%d]", currentPos, len(c.suggestions))
	}

	return style.Render(content)
}

// Complete returns completions for a partial command line. After a command
// name and a space it completes that command's argument.
func (c *CommandMode) Complete(prefix string) []string {
	if c.registry == nil {
		return nil
	}

	if name, arg, ok := strings.Cut(prefix, " "); ok {
		values, known := c.arguments[strings.ToLower(name)]
		if !known {
			return nil
		}
		arg = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(arg), "#"))

		var matches []string
		for _, v := range values {
			if strings.HasPrefix(strings.ToLower(v), arg) {
				matches = append(matches, name+" "+v)
			}
		}
		return matches
	}

	var matches []string
	lowerPrefix := strings.ToLower(prefix)
	for _, cmd := range c.registry.GetCommands() {
		if strings.HasPrefix(strings.ToLower(cmd), lowerPrefix) {
			matches = append(matches, cmd)
		}
	}
	sort.Strings(matches)

	return matches
}

// addToHistory adds a command to the history
func (c *CommandMode) addToHistory(cmd string) {
	if len(c.history) > 0 && c.history[len(c.history)-1] == cmd {
		return
	}
	if len(c.history) >= 100 {
		c.history = c.history[1:]
	}
	c.history = append(c.history, cmd)
}

// parseCommandWithQuotes splits a command line on spaces, honoring
// double quotes and backslash escapes
func parseCommandWithQuotes(cmd string) []string {
	var args []string
	var current strings.Builder
	var inQuotes bool
	var escaped bool

	runes := []rune(cmd)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false

		case r == '\\':
			escaped = true

		case r == '"':
			inQuotes = !inQuotes

		case r == ' ' && !inQuotes:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
			for i+1 < len(runes) && runes[i+1] == ' ' {
				i++
			}

		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}
