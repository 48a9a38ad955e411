package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the BubbleTea model for the watch TUI.
type Model struct {
	apiURL   string
	interval time.Duration

	width  int
	height int

	snap      *snapshotMsg
	lastError string
	lastNote  string

	spinner spinner.Model
	table   table.Model
	theme   Theme
}

// New creates a watch model polling apiURL every interval.
func New(apiURL string, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF"))

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Process", Width: 36},
			{Title: "Priority", Width: 10},
			{Title: "State", Width: 11},
			{Title: "Tmp", Width: 4},
		}),
		table.WithHeight(8),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.Foreground(lipgloss.NoColor{}).Bold(false)
	t.SetStyles(s)

	return Model{
		apiURL:   strings.TrimRight(apiURL, "/"),
		interval: interval,
		spinner:  sp,
		table:    t,
		theme:    NewDefaultTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return fetchSnapshot(m.apiURL) },
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p":
			if m.snap != nil && m.snap.health.Paused {
				return m, postAction(m.apiURL, "resume")
			}
			return m, postAction(m.apiURL, "pause")
		case "c":
			return m, postAction(m.apiURL, "cancel")
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.snap = &msg
		m.lastError = ""
		m.table.SetRows(processRows(msg.processes))
		return m, poll(m.interval)

	case pollMsg:
		apiURL := m.apiURL
		return m, func() tea.Msg { return fetchSnapshot(apiURL) }

	case actionDoneMsg:
		m.lastNote = msg.action + " sent"
		m.lastError = ""
		apiURL := m.apiURL
		return m, func() tea.Msg { return fetchSnapshot(apiURL) }

	case errMsg:
		m.lastError = msg.Error()
		return m, poll(5 * m.interval)
	}

	return m, nil
}

func processRows(entries []processEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		prio := "-"
		if e.Active {
			prio = formatPriority(e.Priority)
		}
		tmp := ""
		if e.Temporary {
			tmp = "yes"
		}
		rows = append(rows, table.Row{e.Name, prio, e.State, tmp})
	}
	return rows
}

// formatPriority shows "-" for a priority the pilot reported as null.
func formatPriority(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *p)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Connecting to pilot..."
	}

	parts := []string{m.renderHeader(), m.renderControl(), m.table.View()}
	if m.lastError != "" {
		parts = append(parts, m.theme.StatusFailed.Render(" ⚠ "+m.lastError))
	} else if m.lastNote != "" {
		parts = append(parts, m.theme.Dim.Render(" "+m.lastNote))
	}
	parts = append(parts, m.theme.Dim.Render(" [q] Quit • [p] Pause/Resume • [c] Cancel"))

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("VOXEL PILOT")
	if m.snap == nil {
		return title + " " + m.spinner.View() + m.theme.Dim.Render(" waiting for control API")
	}
	h := m.snap.health
	state := m.theme.StatusOK.Render("● running")
	if h.Paused {
		state = m.theme.StatusPaused.Render("■ paused")
	}
	world := m.theme.StatusFailed.Render("world: disconnected")
	if s := h.Session; s != nil && s.Connected {
		world = m.theme.StatusOK.Render(fmt.Sprintf("world: %s tick %d", s.AgentID, s.LastObsTick))
	}
	uptime := m.theme.Dim.Render(fmt.Sprintf("up %s", time.Duration(h.UptimeSeconds)*time.Second))
	return strings.Join([]string{title, m.spinner.View(), state, world, uptime}, "  ")
}

func (m Model) renderControl() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("In control"))
	b.WriteString("\n")
	switch {
	case m.snap == nil:
		b.WriteString(m.theme.Dim.Render("-"))
	case m.snap.proc == nil:
		b.WriteString(m.theme.Dim.Render("nothing (idle)"))
	default:
		p := m.snap.proc
		fmt.Fprintf(&b, "%s  %s\n", m.theme.Accent.Render(p.Name), m.theme.Dim.Render(p.Class))
		fmt.Fprintf(&b, "priority %s  temporary %t  command %s", formatPriority(p.Priority), p.Temporary, p.Command)
		if e := m.snap.eta; e != nil {
			fmt.Fprintf(&b, "\neta segment %.1fs (%d ticks)  goal %.1fs (%d ticks)", e.SegmentSeconds, e.SegmentTicks, e.GoalSeconds, e.GoalTicks)
		}
	}
	width := m.width - 6
	if width < 20 {
		width = 20
	}
	return m.theme.Border.Width(width).Render(b.String())
}
