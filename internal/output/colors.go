package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

var (
	epicStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	storyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	taskStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	subtaskStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	editedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// ConfigureColors disables styling when stdout is not a terminal, so piped
// output stays plain.
func ConfigureColors() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return dimStyle.Render(text)
}
