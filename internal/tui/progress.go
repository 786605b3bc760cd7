package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// logPaneLines is how many log lines the run screen keeps visible.
const logPaneLines = 15

// renderProgress renders the run screen: the current extractor position and
// a tail of the live log.
func renderProgress(app *App) string {
	var status strings.Builder
	status.WriteString(StyleSelected.Render("Extraction in progress") + "\n\n")

	p := app.progress
	status.WriteString(StyleLabel.Render("State:    ") + p.State.String() + "\n")
	if p.AppName != "" {
		status.WriteString(StyleLabel.Render("App:      ") + p.AppName + "\n")
	}
	if p.Category != "" {
		status.WriteString(StyleLabel.Render("Category: ") + strings.ReplaceAll(string(p.Category), "_", " ") + "\n")
	}
	if p.Message != "" {
		status.WriteString(StyleDim.Render(p.Message) + "\n")
	}

	var log strings.Builder
	log.WriteString(StyleDim.Render(fmt.Sprintf("Log (last %d lines)", logPaneLines)) + "\n")
	tail := app.logs.Tail(logPaneLines)
	if len(tail) == 0 {
		log.WriteString(StyleDim.Render("  (waiting for output)"))
	} else {
		log.WriteString(strings.Join(tail, "\n"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		StyleCard.Render(status.String()),
		StyleCard.Render(log.String()),
	)
}
