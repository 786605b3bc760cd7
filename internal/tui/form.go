package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/appdx/internal/config"
)

// credField is one editable credential field.
type credField struct {
	Label string
	input textinput.Model
}

// CredFormModel manages the login form: account, API client, API secret and
// an optional controller URL override.
type CredFormModel struct {
	fields       []credField
	focusedField int
	errMsg       string
	submitted    bool // set by enter on the last field or ctrl+s; cleared by parent
}

// newCredForm builds the login form, pre-filled from a stored secret when
// one exists.
func newCredForm(secret *config.Secret) CredFormModel {
	fields := []credField{
		{Label: "Account"},
		{Label: "API Client"},
		{Label: "API Secret"},
		{Label: "Controller URL (optional)"},
	}
	for i := range fields {
		ti := textinput.New()
		ti.CharLimit = 256
		fields[i].input = ti
	}
	fields[2].input.EchoMode = textinput.EchoPassword
	fields[2].input.EchoCharacter = '*'

	if secret != nil {
		fields[0].input.SetValue(secret.Account)
		fields[1].input.SetValue(secret.APIClient)
		fields[2].input.SetValue(secret.APIKey)
	}

	fields[0].input.Focus()
	return CredFormModel{fields: fields}
}

// Credentials validates the form and returns the entered credentials.
func (m *CredFormModel) Credentials() (config.Credentials, error) {
	return config.NewCredentials(
		strings.TrimSpace(m.fields[0].input.Value()),
		strings.TrimSpace(m.fields[1].input.Value()),
		strings.TrimSpace(m.fields[2].input.Value()),
		strings.TrimSpace(m.fields[3].input.Value()),
	)
}

// Secret returns the form contents in storable form.
func (m *CredFormModel) Secret() config.Secret {
	return config.Secret{
		Account:   strings.TrimSpace(m.fields[0].input.Value()),
		APIClient: strings.TrimSpace(m.fields[1].input.Value()),
		APIKey:    strings.TrimSpace(m.fields[2].input.Value()),
	}
}

func (m *CredFormModel) focus(i int) {
	for j := range m.fields {
		m.fields[j].input.Blur()
	}
	m.focusedField = (i + len(m.fields)) % len(m.fields)
	m.fields[m.focusedField].input.Focus()
}

// Update handles form navigation and typing. Enter on the last field, or
// ctrl+s anywhere, submits.
func (m CredFormModel) Update(msg tea.Msg) (CredFormModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case keyMsg.String() == "ctrl+s":
		m.submitted = true
		return m, nil
	case key.Matches(keyMsg, keys.Enter):
		if m.focusedField == len(m.fields)-1 {
			m.submitted = true
			return m, nil
		}
		m.focus(m.focusedField + 1)
		return m, textinput.Blink
	// Plain arrow keys only; j and k must stay typeable in the fields.
	case key.Matches(keyMsg, keys.Tab), keyMsg.String() == "down":
		m.focus(m.focusedField + 1)
		return m, textinput.Blink
	case key.Matches(keyMsg, keys.ShiftTab), keyMsg.String() == "up":
		m.focus(m.focusedField - 1)
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.fields[m.focusedField].input, cmd = m.fields[m.focusedField].input.Update(msg)
	return m, cmd
}

// View renders the form card.
func (m *CredFormModel) View() string {
	var b strings.Builder
	b.WriteString(StyleSelected.Render("Controller Login") + "\n\n")
	for i, f := range m.fields {
		label := StyleDim.Render(f.Label)
		if i == m.focusedField {
			label = StyleLabel.Render(f.Label)
		}
		b.WriteString(label + "\n" + f.input.View() + "\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + StyleError.Render(m.errMsg) + "\n")
	}
	b.WriteString("\n" + StyleDim.Render("enter: next field  ctrl+s: connect"))
	return StyleCard.Render(lipgloss.JoinVertical(lipgloss.Left, b.String()))
}
