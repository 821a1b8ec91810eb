// Package output provides styled terminal output helpers (success, error,
// warning, challenge formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/marcus/t45/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	streakStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func init() {
	// Plain output when piped.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Title renders a bold heading.
func Title(s string) string {
	return titleStyle.Render(s)
}

// FormatDay formats the day counter, e.g. "Day 12 of 45".
func FormatDay(current int) string {
	return titleStyle.Render(fmt.Sprintf("Day %d of %d", current, models.ChallengeLength))
}

// FormatStreak formats the streak counter.
func FormatStreak(days int) string {
	switch days {
	case 0:
		return subtleStyle.Render("no streak yet")
	case 1:
		return streakStyle.Render("1 day streak")
	default:
		return streakStyle.Render(fmt.Sprintf("%d day streak", days))
	}
}

// TaskLine formats a single task checklist line, e.g.
// "  ✓ Mindfulness Practice (12 min)" or "  ○ 8 Glasses of Water (3/8)".
func TaskLine(task models.Task) string {
	mark := pendingStyle.Render("○")
	if task.Completed {
		mark = doneStyle.Render("✓")
	}

	detail := ""
	switch task.Kind {
	case models.KindTimer:
		if v := task.NumberOr(0); v > 0 {
			detail = fmt.Sprintf(" (%d min)", v)
		}
	case models.KindCounter:
		detail = fmt.Sprintf(" (%d/%d)", task.NumberOr(0), task.MaxValue)
	case models.KindText:
		if s := task.TextOr(""); s != "" {
			detail = " " + subtleStyle.Render(fmt.Sprintf("— %s", truncate(s, 40)))
		}
	}

	return fmt.Sprintf("  %s %s%s", mark, task.Title, detail)
}

// FormatProgressBar renders a simple N-of-45 progress bar.
func FormatProgressBar(current, width int) string {
	if width <= 0 {
		width = 30
	}
	if current < 0 {
		current = 0
	}
	if current > models.ChallengeLength {
		current = models.ChallengeLength
	}
	filled := current * width / models.ChallengeLength
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d/%d", bar, current, models.ChallengeLength)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
