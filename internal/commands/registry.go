package commands

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// CommandFunc is a function that executes a command
type CommandFunc func(args []string) tea.Cmd

// Registry holds all available commands
type Registry struct {
	commands map[string]CommandFunc
}

// NewRegistry creates a new command registry with built-in commands
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]CommandFunc),
	}

	// Vim-style: full names only, completion and prefix matching handle the rest
	r.Register("quit", cmdQuit)
	r.Register("refresh", cmdRefresh)
	r.Register("help", cmdHelp)

	// Filtering and paging
	r.Register("tag", cmdTag)
	r.Register("clear", cmdClear)
	r.Register("more", cmdMore)

	// Card actions
	r.Register("open", cmdOpen)
	r.Register("yank", cmdYank)
	r.Register("copy", cmdCopy)
	r.Register("goto", cmdGoto)

	r.Register("theme", cmdTheme)

	return r
}

// Register adds a command to the registry
func (r *Registry) Register(name string, fn CommandFunc) {
	r.commands[name] = fn
}

// Execute runs a command by name with arguments
func (r *Registry) Execute(name string, args []string) tea.Cmd {
	// First try exact match
	if fn, ok := r.commands[name]; ok {
		return fn(args)
	}

	// Then try prefix matching (vim-style)
	var matches []string
	var matchedFn CommandFunc
	lowerName := strings.ToLower(name)

	for cmdName, fn := range r.commands {
		if strings.HasPrefix(strings.ToLower(cmdName), lowerName) {
			matches = append(matches, cmdName)
			matchedFn = fn
		}
	}

	if len(matches) == 1 {
		return matchedFn(args)
	}

	if len(matches) > 1 {
		return showError(fmt.Sprintf("Ambiguous command '%s': %s", name, strings.Join(matches, ", ")))
	}

	return showError(fmt.Sprintf("Unknown command: %s", name))
}

// GetCommands returns all registered command names
func (r *Registry) GetCommands() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	return names
}

// Built-in command implementations

func cmdQuit(args []string) tea.Cmd {
	return tea.Quit
}

// cmdRefresh discards the cache and refetches
func cmdRefresh(args []string) tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

func cmdHelp(args []string) tea.Cmd {
	return func() tea.Msg {
		return HelpMsg{}
	}
}

// cmdTag toggles one tag in the filter; a leading # is ignored
func cmdTag(args []string) tea.Cmd {
	return func() tea.Msg {
		if len(args) == 0 {
			return ErrorMsg{Message: "tag: name required (use tab completion to see tags)"}
		}
		tag := strings.TrimPrefix(strings.Join(args, " "), "#")
		if tag == "" {
			return ErrorMsg{Message: "tag: name required"}
		}
		return TagMsg{Tag: tag}
	}
}

func cmdClear(args []string) tea.Cmd {
	return func() tea.Msg {
		return ClearTagsMsg{}
	}
}

// cmdMore reveals the next page without scrolling
func cmdMore(args []string) tea.Cmd {
	return func() tea.Msg {
		return LoadMoreMsg{}
	}
}

// cmdOpen opens the selected card's video in the browser
func cmdOpen(args []string) tea.Cmd {
	return func() tea.Msg {
		return OpenMsg{}
	}
}

// cmdYank copies the selected card's video URL
func cmdYank(args []string) tea.Cmd {
	return func() tea.Msg {
		return YankMsg{}
	}
}

// cmdCopy copies the selected card's text to the clipboard
func cmdCopy(args []string) tea.Cmd {
	return func() tea.Msg {
		target := "summary"
		if len(args) > 0 {
			target = args[0]
		}
		switch target {
		case "summary", "text", "title":
			return CopyMsg{Target: target}
		default:
			return ErrorMsg{Message: fmt.Sprintf("copy: unknown target '%s' (available: summary, text, title)", target)}
		}
	}
}

// cmdGoto opens the player for the record with the given slug
func cmdGoto(args []string) tea.Cmd {
	return func() tea.Msg {
		if len(args) == 0 {
			return ErrorMsg{Message: "goto: slug required"}
		}
		return GotoMsg{Slug: args[0]}
	}
}

// cmdTheme cycles themes, or switches to the named one
func cmdTheme(args []string) tea.Cmd {
	return func() tea.Msg {
		if len(args) > 0 {
			return ThemeMsg{Name: args[0]}
		}
		return ThemeMsg{}
	}
}

// showError returns a command that shows an error message
func showError(msg string) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Message: msg}
	}
}

// Message types for commands

// RefreshMsg signals that the collection should be refetched
type RefreshMsg struct{}

// ErrorMsg contains an error message to display
type ErrorMsg struct {
	Message string
}

// HelpMsg signals to show the help modal
type HelpMsg struct{}

// TagMsg toggles a tag in the filter
type TagMsg struct {
	Tag string
}

// ClearTagsMsg empties the tag filter
type ClearTagsMsg struct{}

// LoadMoreMsg reveals the next page
type LoadMoreMsg struct{}

// OpenMsg signals to open the video in a browser
type OpenMsg struct{}

// YankMsg signals to copy the video URL to the clipboard
type YankMsg struct{}

// CopyMsg signals to copy card text to the clipboard
type CopyMsg struct {
	Target string // "summary" (default), "text" or "title"
}

// GotoMsg opens the record whose title slug matches
type GotoMsg struct {
	Slug string
}

// ThemeMsg switches theme; an empty Name cycles to the next one
type ThemeMsg struct {
	Name string
}
