package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/daniellalimbag/dory-app-sub000/internal/service"
)

// SessionsModel is the session list screen model
type SessionsModel struct {
	queryService *service.QueryService
	sessions     []service.SessionWithResult
	cursor       int
	offset       int
	total        int
	pageSize     int
	loading      bool
	err          error
}

// NewSessionsModel creates a new session list model
func NewSessionsModel(qs *service.QueryService) SessionsModel {
	return SessionsModel{
		queryService: qs,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the session list
func (m SessionsModel) Init() tea.Cmd {
	return m.loadPage
}

type sessionsLoadedMsg struct {
	sessions []service.SessionWithResult
	total    int
	err      error
}

func (m SessionsModel) loadPage() tea.Msg {
	sessions, err := m.queryService.ListSessions(m.pageSize, m.offset)
	if err != nil {
		return sessionsLoadedMsg{err: err}
	}

	total, err := m.queryService.TotalSessions()
	if err != nil {
		return sessionsLoadedMsg{err: err}
	}

	return sessionsLoadedMsg{sessions: sessions, total: total}
}

// Update handles messages
func (m SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.sessions = msg.sessions
		m.total = msg.total
		if m.cursor >= len(m.sessions) {
			m.cursor = max(len(m.sessions)-1, 0)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				// Go to previous page
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.sessions)-1 {
				m.cursor++
			} else if m.offset+len(m.sessions) < m.total {
				// Go to next page
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset = max(m.offset-m.pageSize, 0)
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "enter":
			if len(m.sessions) > 0 && m.cursor < len(m.sessions) {
				id := m.sessions[m.cursor].Session.ID
				return m, func() tea.Msg {
					return OpenSessionDetailMsg{SessionID: id}
				}
			}
		}
	}
	return m, nil
}

// View renders the session list
func (m SessionsModel) View() string {
	if m.loading {
		return "\n  Loading sessions..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.sessions) == 0 {
		return "\n  No sessions yet. Import one with 'dory import <file.csv>'."
	}

	var sections []string

	startNum := m.offset + 1
	endNum := m.offset + len(m.sessions)
	title := cardTitleStyle.Render(fmt.Sprintf("Sessions (%d-%d of %d)", startNum, endNum, m.total))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-14s  %-24s  %4s  %7s  %8s  %7s  %-8s",
		"When", "Name", "Laps", "Dist", "Pace", "SR/min", "Source"))
	sections = append(sections, header)

	for i, sr := range m.sessions {
		s := sr.Session

		laps, dist, pace, rate, source := "-", "-", "-", "-", "pending"
		if r := sr.Result; r != nil {
			laps = fmt.Sprintf("%d", r.LapCount)
			dist = fmt.Sprintf("%.0fm", r.TotalDistanceMeters)
			pace = formatPace100(r.AvgVelocity)
			if r.AvgStrokeRate > 0 {
				rate = fmt.Sprintf("%.0f", r.AvgStrokeRate*60)
			}
			source = r.Source
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-14s  %-24s  %4s  %7s  %8s  %7s  %-8s",
			cursor,
			truncateName(humanize.Time(s.StartedAt), 14),
			truncateName(s.Name, 24),
			laps,
			dist,
			pace,
			rate,
			source,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  enter: view details  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
