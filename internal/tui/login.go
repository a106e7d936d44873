package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chemviz/chemviz/internal/dashboard"
)

// LoginPage collects credentials and hands them to the reconciler. The
// page itself never talks to the network or decides why a login failed;
// it just renders whatever message the reconciler left behind.
type LoginPage struct {
	rec      *dashboard.Reconciler
	keys     KeyMap
	username textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	state    dashboard.ViewState
}

// NewLoginPage creates the login form.
func NewLoginPage(rec *dashboard.Reconciler) *LoginPage {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 28

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 64
	password.Width = 28
	password.EchoMode = textinput.EchoPassword

	return &LoginPage{
		rec:      rec,
		keys:     DefaultKeyMap(),
		username: username,
		password: password,
	}
}

func (p *LoginPage) ID() string { return PageLogin }

func (p *LoginPage) Init() tea.Cmd {
	p.state = p.rec.Snapshot()
	p.busy = false
	p.password.SetValue("")
	p.focus = 0
	p.username.Focus()
	p.password.Blur()
	return textinput.Blink
}

func (p *LoginPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case StateChangedMsg:
		p.state = p.rec.Snapshot()
		p.busy = false
		return nil, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Next), key.Matches(msg, p.keys.Prev):
			p.focus = (p.focus + 1) % 2
			if p.focus == 0 {
				p.password.Blur()
				return p.username.Focus(), nil
			}
			p.username.Blur()
			return p.password.Focus(), nil

		case key.Matches(msg, p.keys.Submit):
			if p.busy {
				return nil, nil
			}
			p.busy = true
			username, password := p.username.Value(), p.password.Value()
			return func() tea.Msg {
				p.rec.Login(context.Background(), username, password)
				return StateChangedMsg{}
			}, nil
		}
	}

	var cmd tea.Cmd
	if p.focus == 0 {
		p.username, cmd = p.username.Update(msg)
	} else {
		p.password, cmd = p.password.Update(msg)
	}
	return cmd, nil
}

func (p *LoginPage) View(width, height int) string {
	title := titleStyle.Render("ChemViz")
	subtitle := labelStyle.Render("Equipment CSV Dashboard")

	form := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Username"),
		p.username.View(),
		"",
		labelStyle.Render("Password"),
		p.password.View(),
	)

	status := helpStyle.Render("enter: login • tab: switch field • ctrl+c: quit")
	if p.busy {
		status = helpStyle.Render("Logging in...")
	}

	var message string
	switch {
	case p.state.ErrorMessage != "":
		message = errorStyle.Render(p.state.ErrorMessage)
	case p.state.InfoMessage != "":
		message = infoStyle.Render(p.state.InfoMessage)
	}

	card := activeCardStyle.Padding(1, 3).Render(
		lipgloss.JoinVertical(lipgloss.Center, title, subtitle, "", form, "", message, status),
	)

	if width <= 0 || height <= 0 {
		return card
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
