// Package tui is the interactive front end: login, application selection,
// live run progress and result browsing, ending in an Excel export.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/appdx/internal/auth"
	"github.com/dm/appdx/internal/client"
	"github.com/dm/appdx/internal/config"
	"github.com/dm/appdx/internal/export"
	"github.com/dm/appdx/internal/extract"
	"github.com/dm/appdx/internal/model"
	"github.com/dm/appdx/internal/trace"
	"github.com/dm/appdx/internal/validate"
)

type screen int

const (
	screenLogin screen = iota
	screenConnecting
	screenSelect
	screenRunning
	screenResults
)

// connectTimeout bounds the login roundtrip; one extraction run has no
// overall deadline, only per-request timeouts inside the client.
const connectTimeout = 60 * time.Second

// App is the root Bubble Tea model.
type App struct {
	store    *config.SecretStore
	settings config.Settings
	log      *trace.Logger
	logs     *model.LogHistory
	logCh    chan string

	authn *auth.Authenticator
	api   client.Controller

	screen  screen
	form    CredFormModel
	sel     SelectModel
	results ResultsModel

	progress   extract.Progress
	progressCh chan extract.Progress
	runCancel  context.CancelFunc

	exportPath string
	exportMsg  string
	lastError  error

	width, height int
	showHelp      bool
}

// NewApp builds the root model. The login form is pre-filled from the secret
// store when an entry exists, and every log line is mirrored into the run
// screen's log pane.
func NewApp(store *config.SecretStore, settings config.Settings, log *trace.Logger, exportPath string) *App {
	if log == nil {
		log = trace.Nop()
	}
	app := &App{
		store:      store,
		settings:   settings,
		log:        log,
		logs:       model.NewLogHistory(0),
		logCh:      make(chan string, 256),
		exportPath: exportPath,
		screen:     screenLogin,
	}

	var stored *config.Secret
	if store != nil {
		if secrets, err := store.Load(); err == nil && len(secrets) > 0 {
			stored = &secrets[0]
		}
	}
	app.form = newCredForm(stored)

	ch := app.logCh
	log.AttachSink(func(line string) {
		// Never block the extraction goroutine on a full UI channel.
		select {
		case ch <- line:
		default:
		}
	})

	return app
}

// Init implements tea.Model.
func (app *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitLog(app.logCh))
}

// Update implements tea.Model, the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height
		return app, nil

	case LogMsg:
		app.logs.Push(string(msg))
		return app, waitLog(app.logCh)

	case ConnectedMsg:
		app.lastError = nil
		app.saveSecret()
		app.sel = newSelectModel(msg.Apps, app.settings.APMMetricDurationMins)
		app.screen = screenSelect
		return app, nil

	case ConnectErrorMsg:
		app.lastError = msg.Err
		app.form.errMsg = loginErrorText(msg.Err)
		app.screen = screenLogin
		return app, nil

	case ProgressMsg:
		app.progress = extract.Progress(msg)
		return app, waitProgress(app.progressCh)

	case RunDoneMsg:
		app.runCancel = nil
		app.results = newResultsModel(msg.Result)
		app.screen = screenResults
		return app, nil

	case RunErrorMsg:
		app.runCancel = nil
		app.lastError = msg.Err
		var authErr *auth.Error
		if errors.As(msg.Err, &authErr) {
			app.form.errMsg = loginErrorText(msg.Err)
			app.screen = screenLogin
		} else {
			app.screen = screenSelect
		}
		return app, nil

	case ExportDoneMsg:
		app.exportMsg = "saved " + msg.Path
		return app, nil

	case ExportErrorMsg:
		app.exportMsg = StyleError.Render(msg.Err.Error())
		return app, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			if app.runCancel != nil {
				app.runCancel()
			}
			return app, tea.Quit
		}
		return app.updateScreen(msg)
	}

	return app, nil
}

// updateScreen routes a key press to the active screen.
func (app *App) updateScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch app.screen {

	case screenLogin:
		var cmd tea.Cmd
		app.form, cmd = app.form.Update(msg)
		if app.form.submitted {
			app.form.submitted = false
			return app, app.connect()
		}
		return app, cmd

	case screenConnecting:
		// Nothing to interact with until the login roundtrip finishes.
		return app, nil

	case screenSelect:
		if key.Matches(msg, keys.Help) {
			app.showHelp = !app.showHelp
			return app, nil
		}
		if key.Matches(msg, keys.Escape) {
			app.screen = screenLogin
			return app, nil
		}
		var cmd tea.Cmd
		app.sel, cmd = app.sel.Update(msg)
		if app.sel.confirmed {
			app.sel.confirmed = false
			return app, app.startRun()
		}
		return app, cmd

	case screenRunning:
		if key.Matches(msg, keys.Help) {
			app.showHelp = !app.showHelp
		}
		if key.Matches(msg, keys.Escape) && app.runCancel != nil {
			app.runCancel()
		}
		return app, nil

	case screenResults:
		if !app.results.searching {
			switch {
			case key.Matches(msg, keys.Help):
				app.showHelp = !app.showHelp
				return app, nil
			case key.Matches(msg, keys.Export):
				return app, exportCmd(app.exportFile(), app.results.result)
			case key.Matches(msg, keys.Escape):
				app.exportMsg = ""
				app.screen = screenSelect
				return app, nil
			}
		}
		var cmd tea.Cmd
		app.results, cmd = app.results.Update(msg)
		return app, cmd
	}

	return app, nil
}

// View implements tea.Model.
func (app *App) View() string {
	var body string
	switch app.screen {
	case screenLogin:
		body = app.form.View()
	case screenConnecting:
		body = StyleCard.Render("Connecting...")
	case screenSelect:
		body = app.sel.View()
	case screenRunning:
		body = renderProgress(app)
	case screenResults:
		body = app.results.View(app.width)
	}

	return strings.Join([]string{
		renderHeader(app),
		body,
		renderFooter(app),
	}, "\n")
}

// connect validates the form, builds the authenticator and API client and
// kicks off the login roundtrip.
func (app *App) connect() tea.Cmd {
	creds, err := app.form.Credentials()
	if err != nil {
		app.form.errMsg = err.Error()
		return nil
	}
	app.form.errMsg = ""

	app.authn = auth.New(creds, app.settings.VerifySSL, 0)
	app.api = client.New(app.authn, nil, app.log)
	app.screen = screenConnecting

	authn, api := app.authn, app.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if _, err := authn.EnsureValidToken(ctx); err != nil {
			return ConnectErrorMsg{Err: err}
		}
		body, err := api.GetApplications(ctx)
		if err != nil {
			return ConnectErrorMsg{Err: err}
		}
		apps, err := validate.Applications(body)
		if err != nil {
			return ConnectErrorMsg{Err: err}
		}
		return ConnectedMsg{Apps: apps}
	}
}

// startRun launches one extraction on its own goroutine, streaming progress
// through a channel the Update loop drains.
func (app *App) startRun() tea.Cmd {
	sel := app.sel.Selection()
	app.progress = extract.Progress{State: extract.StateIdle}
	app.progressCh = make(chan extract.Progress, 64)
	app.exportMsg = ""
	app.screen = screenRunning

	ctx, cancel := context.WithCancel(context.Background())
	app.runCancel = cancel

	settings := app.settings
	if mins, ok := app.sel.WindowMins(); ok {
		settings.APMMetricDurationMins = mins
		settings.MachineMetricDurationMins = mins
		settings.SnapshotDurationMins = mins
		settings.EventDurationMins = mins
	}
	app.log.SetDebug(settings.Debug || app.sel.DebugEnabled())

	ch := app.progressCh
	ex := extract.New(app.api, settings, app.log, func(p extract.Progress) {
		select {
		case ch <- p:
		default:
		}
	})

	run := func() tea.Msg {
		defer close(ch)
		res, err := ex.Run(ctx, sel)
		if err != nil {
			return RunErrorMsg{Err: err}
		}
		return RunDoneMsg{Result: res}
	}
	return tea.Batch(run, waitProgress(ch))
}

// waitProgress delivers the next progress update; a closed channel ends the
// listener quietly.
func waitProgress(ch chan extract.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return ProgressMsg(p)
	}
}

// waitLog delivers the next rendered log line.
func waitLog(ch chan string) tea.Cmd {
	return func() tea.Msg {
		return LogMsg(<-ch)
	}
}

// exportCmd writes the workbook off the Update goroutine.
func exportCmd(path string, res *extract.Result) tea.Cmd {
	return func() tea.Msg {
		if err := export.Excel(path, res); err != nil {
			return ExportErrorMsg{Err: err}
		}
		return ExportDoneMsg{Path: path}
	}
}

// exportFile returns the configured output path, or a timestamped default.
func (app *App) exportFile() string {
	if app.exportPath != "" {
		return app.exportPath
	}
	return fmt.Sprintf("appdx-%s.xlsx", time.Now().Format("20060102-150405"))
}

// saveSecret persists the successful login for the next session.
func (app *App) saveSecret() {
	if app.store == nil {
		return
	}
	if err := app.store.Save(app.form.Secret()); err != nil {
		app.log.Warn("could not save credentials", "error", err.Error())
	}
}

// loginErrorText prefers the remediation hint for credential problems.
func loginErrorText(err error) string {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return authErr.Error() + "\n" + authErr.Remediation()
	}
	return err.Error()
}
