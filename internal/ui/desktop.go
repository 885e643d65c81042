package ui

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// execCommand and lookPath are swapped out in tests
var (
	execCommand = exec.Command
	lookPath    = exec.LookPath
)

// clipboardCommand picks the clipboard writer for goos
func clipboardCommand(goos string) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{"pbcopy"}, nil
	case "linux":
		// X11 first, then Wayland
		candidates := [][]string{
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
			{"wl-copy"},
		}
		for _, c := range candidates {
			if _, err := lookPath(c[0]); err == nil {
				return c, nil
			}
		}
		return nil, fmt.Errorf("no clipboard command found (install xclip, xsel, or wl-clipboard)")
	case "windows":
		return []string{"clip.exe"}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// browserCommand picks the URL opener for goos
func browserCommand(goos, url string) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{"open", url}, nil
	case "linux":
		return []string{"xdg-open", url}, nil
	case "windows":
		return []string{"cmd", "/c", "start", url}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// CopyToClipboard writes text to the system clipboard
func CopyToClipboard(text string) error {
	if text == "" {
		return fmt.Errorf("cannot copy empty text to clipboard")
	}

	args, err := clipboardCommand(runtime.GOOS)
	if err != nil {
		return err
	}
	cmd := execCommand(args[0], args[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start clipboard command: %w", err)
	}

	if _, err := io.WriteString(stdin, text); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	if err := stdin.Close(); err != nil {
		return fmt.Errorf("failed to close stdin: %w", err)
	}

	// Some clipboard tools exit non-zero after a successful copy
	if err := cmd.Wait(); err != nil && !strings.Contains(err.Error(), "exit status") {
		return fmt.Errorf("clipboard command failed: %w", err)
	}
	return nil
}

// OpenInBrowser launches the default browser without waiting for it
func OpenInBrowser(url string) error {
	if url == "" {
		return fmt.Errorf("cannot open empty URL")
	}

	args, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := execCommand(args[0], args[1:]...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
