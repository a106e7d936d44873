package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chemviz/chemviz/internal/dashboard"
	"github.com/chemviz/chemviz/internal/model"
)

// DashboardPage renders the upload history, the latest summary, and the
// per-metric trends, and drives uploads and report downloads through the
// reconciler. All blocking work runs in commands off the update loop.
type DashboardPage struct {
	rec         *dashboard.Reconciler
	keys        KeyMap
	fileInput   textinput.Model
	state       dashboard.ViewState
	downloadDir string
	reportNote  string
	loaded      bool
}

// NewDashboardPage creates the dashboard. Downloaded reports are written
// under downloadDir.
func NewDashboardPage(rec *dashboard.Reconciler, downloadDir string) *DashboardPage {
	fileInput := textinput.New()
	fileInput.Placeholder = "path/to/equipment.csv"
	fileInput.CharLimit = 256
	fileInput.Width = 48

	return &DashboardPage{
		rec:         rec,
		keys:        DefaultKeyMap(),
		fileInput:   fileInput,
		downloadDir: downloadDir,
	}
}

func (p *DashboardPage) ID() string { return PageDashboard }

func (p *DashboardPage) Init() tea.Cmd {
	p.state = p.rec.Snapshot()
	p.fileInput.Focus()

	cmds := []tea.Cmd{textinput.Blink}
	if !p.loaded && len(p.state.History) == 0 && p.state.InfoMessage == "" && p.state.ErrorMessage == "" {
		// Resumed session: nothing loaded this run yet.
		cmds = append(cmds, p.loadHistoryCmd())
	}
	p.loaded = true
	return tea.Batch(cmds...)
}

func (p *DashboardPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case StateChangedMsg:
		prev := p.state
		p.state = p.rec.Snapshot()
		if prev.UploadInProgress && !p.state.UploadInProgress && p.state.PendingFile == "" {
			p.fileInput.SetValue("")
		}
		return nil, nil

	case reportSavedMsg:
		if msg.err != nil {
			p.reportNote = "Could not save report: " + msg.err.Error()
		} else if msg.path != "" {
			p.reportNote = "Report saved to " + msg.path
		} else {
			p.reportNote = ""
		}
		return nil, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Upload), key.Matches(msg, p.keys.Submit):
			if p.state.UploadInProgress {
				return nil, nil
			}
			p.reportNote = ""
			path := strings.TrimSpace(p.fileInput.Value())
			return func() tea.Msg {
				p.rec.SelectFile(path)
				p.rec.Upload(context.Background())
				return StateChangedMsg{}
			}, nil

		case key.Matches(msg, p.keys.Refresh):
			p.reportNote = ""
			return p.loadHistoryCmd(), nil

		case key.Matches(msg, p.keys.Download):
			p.reportNote = ""
			return p.downloadReportCmd(), nil

		case key.Matches(msg, p.keys.Logout):
			return func() tea.Msg {
				p.rec.Logout()
				return StateChangedMsg{}
			}, nil
		}
	}

	var cmd tea.Cmd
	p.fileInput, cmd = p.fileInput.Update(msg)
	return cmd, nil
}

func (p *DashboardPage) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		p.rec.LoadHistory(context.Background())
		return StateChangedMsg{}
	}
}

func (p *DashboardPage) downloadReportCmd() tea.Cmd {
	dir := p.downloadDir
	return func() tea.Msg {
		data, ok := p.rec.DownloadReport(context.Background())
		if !ok {
			return StateChangedMsg{}
		}
		path := filepath.Join(dir, "report.pdf")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return reportSavedMsg{err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return reportSavedMsg{err: err}
		}
		return reportSavedMsg{path: path}
	}
}

func (p *DashboardPage) View(width, height int) string {
	if width <= 0 {
		width = 100
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("ChemViz"),
		"  ",
		labelStyle.Render("Equipment CSV Dashboard"),
	)

	sections := []string{
		header,
		p.renderMessages(),
		p.renderSummaryCards(width),
		p.renderCharts(width),
		p.renderHistory(),
		p.renderUploadBar(),
		helpStyle.Render("enter/ctrl+u: upload • ctrl+r: refresh • ctrl+d: report • ctrl+o: logout • ctrl+c: quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (p *DashboardPage) renderMessages() string {
	switch {
	case p.state.ErrorMessage != "":
		return errorStyle.Render(p.state.ErrorMessage)
	case p.state.InfoMessage != "":
		return infoStyle.Render(p.state.InfoMessage)
	case p.reportNote != "":
		return infoStyle.Render(p.reportNote)
	}
	return ""
}

func (p *DashboardPage) renderSummaryCards(width int) string {
	var summary model.Summary
	if latest := p.state.History.Latest(); latest != nil {
		summary = latest.Summary
	}

	cardWidth := width/4 - 4
	if cardWidth < 16 {
		cardWidth = 16
	}

	card := func(label string, value *float64) string {
		return cardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
			labelStyle.Render(label),
			valueStyle.Render(model.FormatMetric(value)),
		))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Equipment", summary.TotalEquipment),
		card("Avg Flowrate", summary.AvgFlowrate),
		card("Avg Pressure", summary.AvgPressure),
		card("Avg Temperature", summary.AvgTemperature),
	)
}

func (p *DashboardPage) renderCharts(width int) string {
	half := width/2 - 4
	if half < 30 {
		half = 30
	}

	var dist map[string]int
	if latest := p.state.History.Latest(); latest != nil {
		dist = latest.Summary.TypeDistribution
	}
	distCard := cardStyle.Width(half).Render(lipgloss.JoinVertical(lipgloss.Left,
		chartTitleStyle.Render("Type Distribution"),
		typeDistributionChart(dist, half-2, 6),
	))

	trend := func(title string, metric func(model.Summary) *float64) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			chartTitleStyle.Render(title),
			metricTrendChart(p.state.History, metric, half-2, 4),
		)
	}
	trendCard := cardStyle.Width(half).Render(lipgloss.JoinVertical(lipgloss.Left,
		trend("Flowrate", func(s model.Summary) *float64 { return s.AvgFlowrate }),
		trend("Pressure", func(s model.Summary) *float64 { return s.AvgPressure }),
	))

	return lipgloss.JoinHorizontal(lipgloss.Top, distCard, trendCard)
}

func (p *DashboardPage) renderHistory() string {
	title := chartTitleStyle.Render(fmt.Sprintf("Uploads (%d)", len(p.state.History)))
	if len(p.state.History) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, helpStyle.Render("No uploads yet."))
	}

	lines := []string{title}
	for _, rec := range p.state.History {
		lines = append(lines, fmt.Sprintf("%s  %s  %s",
			labelStyle.Render(rec.UploadedAt.Local().Format("2006-01-02 15:04")),
			valueStyle.Render(rec.Filename),
			labelStyle.Render("rows: "+model.FormatMetric(rec.Summary.TotalEquipment)),
		))
	}
	return strings.Join(lines, "\n")
}

func (p *DashboardPage) renderUploadBar() string {
	label := labelStyle.Render("CSV file:")
	status := ""
	if p.state.UploadInProgress {
		status = infoStyle.Render("  Uploading...")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, label, " ", p.fileInput.View(), status)
}
