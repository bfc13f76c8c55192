// Package ui renders a live-updating terminal dashboard for "vectorlib
// stats --watch", grounded on the same bubbletea/lipgloss conventions the
// rest of this codebase's CLI tooling uses for richer terminal output.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/vectorlib/internal/service"
)

// RefreshInterval controls how often the dashboard re-reads library state.
const RefreshInterval = time.Second

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("238")).
	Padding(0, 1)

var footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type statsModel struct {
	ctx          context.Context
	svc          *service.Service
	snapshotPath string
	table        table.Model
	interval     time.Duration
}

// RunStatsWatch launches a live dashboard of library stats that refreshes
// every interval until the user quits with "q", "esc", or Ctrl-C. When
// snapshotPath is non-empty, it is reloaded on every tick so the dashboard
// reflects writes made by a separately running "vectorlib serve" process.
func RunStatsWatch(ctx context.Context, svc *service.Service, snapshotPath string, interval time.Duration) error {
	if interval <= 0 {
		interval = RefreshInterval
	}

	columns := []table.Column{
		{Title: "Library", Width: 24},
		{Title: "Index", Width: 8},
		{Title: "Dim", Width: 6},
		{Title: "Documents", Width: 10},
		{Title: "Version", Width: 8},
	}

	t := table.New(table.WithColumns(columns), table.WithHeight(12))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("238")).BorderBottom(true).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("154")).Bold(false)
	t.SetStyles(styles)

	m := statsModel{ctx: ctx, svc: svc, snapshotPath: snapshotPath, table: t, interval: interval}
	m.table.SetRows(m.rows())

	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

func (m statsModel) Init() tea.Cmd {
	return tickCmd(m.interval)
}

func (m statsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tickMsg:
		if m.snapshotPath != "" {
			_, _ = m.svc.LoadSnapshot(m.snapshotPath)
		}
		m.table.SetRows(m.rows())
		return m, tickCmd(m.interval)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m statsModel) View() string {
	body := panelStyle.Render(m.table.View())
	footer := footerStyle.Render("refreshing every " + m.interval.String() + " · press q to quit")
	return body + "\n" + footer + "\n"
}

func (m statsModel) rows() []table.Row {
	libs := m.svc.ListLibraries(m.ctx)
	rows := make([]table.Row, 0, len(libs))
	for _, lib := range libs {
		docs, err := m.svc.ListDocumentsByLibrary(m.ctx, lib.ID)
		if err != nil {
			continue
		}
		rows = append(rows, table.Row{
			lib.Name,
			string(lib.IndexConfig.Type),
			fmt.Sprint(lib.EmbeddingDim),
			fmt.Sprint(len(docs)),
			fmt.Sprint(lib.Version),
		})
	}
	return rows
}
