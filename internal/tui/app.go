package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chemviz/chemviz/internal/dashboard"
)

// App is the top-level Bubble Tea model. It owns the page map and keeps
// the active page in line with the session: an authenticated session shows
// the dashboard, anything else shows the login form. That rule also covers
// the forced logout, which flips the session underneath the UI.
type App struct {
	rec        *dashboard.Reconciler
	pages      map[string]Page
	activePage string
	width      int
	height     int
}

// NewApp builds the app over the reconciler and its pages.
func NewApp(rec *dashboard.Reconciler, pages ...Page) *App {
	pageMap := make(map[string]Page, len(pages))
	for _, p := range pages {
		pageMap[p.ID()] = p
	}
	a := &App{
		rec:        rec,
		pages:      pageMap,
		activePage: PageLogin,
	}
	if rec.Authenticated() {
		a.activePage = PageDashboard
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if p, ok := a.pages[a.activePage]; ok {
		return p.Init()
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case StateChangedMsg:
		// The session decides which page is showing. Switching on a
		// state change keeps the UI honest when the session expires
		// mid-screen.
		want := PageLogin
		if a.rec.Authenticated() {
			want = PageDashboard
		}
		if want != a.activePage {
			return a, a.switchTo(want)
		}
	}

	p, ok := a.pages[a.activePage]
	if !ok {
		return a, nil
	}

	cmd, nav := p.Update(msg)
	if nav != nil {
		if _, exists := a.pages[nav.PageID]; exists {
			return a, tea.Batch(cmd, a.switchTo(nav.PageID))
		}
	}
	return a, cmd
}

func (a *App) switchTo(id string) tea.Cmd {
	a.activePage = id
	return a.pages[id].Init()
}

func (a *App) View() string {
	if p, ok := a.pages[a.activePage]; ok {
		return p.View(a.width, a.height)
	}
	return "No active page"
}
