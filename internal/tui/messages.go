package tui

import (
	"github.com/dm/appdx/internal/client"
	"github.com/dm/appdx/internal/extract"
)

// ConnectedMsg delivers the application list after a successful login.
type ConnectedMsg struct {
	Apps []client.Application
}

// ConnectErrorMsg signals a failed login or application listing.
type ConnectErrorMsg struct{ Err error }

// ProgressMsg relays one extractor state change to the run screen.
type ProgressMsg extract.Progress

// LogMsg carries one rendered log line into the log pane.
type LogMsg string

// RunDoneMsg delivers the finished extraction result.
type RunDoneMsg struct {
	Result *extract.Result
}

// RunErrorMsg signals a fatal run failure (authentication, cancellation).
type RunErrorMsg struct{ Err error }

// ExportDoneMsg signals a completed workbook write.
type ExportDoneMsg struct{ Path string }

// ExportErrorMsg signals a failed workbook write.
type ExportErrorMsg struct{ Err error }
