package util

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	IsDebug bool

	// Error styling
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	debugErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF4757")).
			Padding(1, 2)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA726")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

// SetDebugMode sets the debug mode
func SetDebugMode(debug bool) {
	IsDebug = debug
}

// ErrorHandler returns a stylized error message with full details in debug mode
func ErrorHandler(err error) string {
	if IsDebug {
		errorMessage := "🚨 DEBUG ERROR 🔍"
		fullError := fmt.Sprintf("%+v", err)

		styledHeader := errorStyle.Render(errorMessage)
		styledError := debugErrorStyle.Render(fullError)

		return fmt.Sprintf("%s\n%s", styledHeader, styledError)
	}

	baseError := fmt.Sprintf("%v", err)
	hint := "run with --debug to see details"

	styledError := errorStyle.Render("❌ " + baseError)
	styledHint := warningStyle.Render("💡 " + hint)

	return fmt.Sprintf("%s\n%s", styledError, styledHint)
}

// Success returns a stylized success message
func Success(msg string) string {
	return successStyle.Render("✓ " + msg)
}

// SanitizeFilename turns a server-provided attachment name into a safe local
// file name: directory components are stripped and characters that are
// reserved on common filesystems are replaced with underscores.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, " .")
	if name == "" || name == "." || name == ".." {
		return "subtitle"
	}
	return name
}
