package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(12)
	valueStyle   = lipgloss.NewStyle().Bold(true)
)

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✓ "+msg))
}

func printFailure(w io.Writer, msg string) {
	fmt.Fprintln(w, failureStyle.Render("✗ "+msg))
}

func printField(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(label+":"), valueStyle.Render(fmt.Sprint(value)))
}
