package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
	"github.com/daniellalimbag/dory-app-sub000/internal/service"
	"github.com/daniellalimbag/dory-app-sub000/internal/strokestyle"
)

// SessionDetailModel is the session detail screen model
type SessionDetailModel struct {
	queryService *service.QueryService
	sessionID    string
	detail       *service.SessionDetail
	viewport     viewport.Model
	loading      bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewSessionDetailModel creates a new session detail model
func NewSessionDetailModel(qs *service.QueryService, sessionID string, width, height int) SessionDetailModel {
	m := SessionDetailModel{
		queryService: qs,
		sessionID:    sessionID,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // Reserve space for header/footer
		m.ready = true
	}

	return m
}

// Init initializes the session detail screen
func (m SessionDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type sessionDetailLoadedMsg struct {
	detail *service.SessionDetail
	err    error
}

func (m SessionDetailModel) loadDetail() tea.Msg {
	detail, err := m.queryService.GetSessionDetail(m.sessionID)
	return sessionDetailLoadedMsg{detail: detail, err: err}
}

// Update handles messages
func (m SessionDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.detail = msg.detail
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadDetail
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the session detail screen
func (m SessionDetailModel) View() string {
	if m.loading {
		return "\n  Loading session..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m SessionDetailModel) renderContent() string {
	if m.detail == nil {
		return "No data"
	}

	var sections []string

	sections = append(sections, m.renderHeader())

	if m.detail.Result == nil {
		sections = append(sections, warningStyle.Render("  Not analyzed yet. Press '2' to analyze pending sessions."), "")
	} else {
		sections = append(sections, m.renderSummary())
	}

	if len(m.detail.Laps) > 0 {
		sections = append(sections, m.renderLaps())
	}

	if len(m.detail.Laps) > 2 {
		sections = append(sections, m.renderLapChart("Velocity per Lap (m/s)", lapValues(m.detail.Laps, func(l analysis.LapMetrics) float64 {
			return l.VelocityMetersPerSecond
		})))
		sections = append(sections, m.renderLapChart("Stroke Rate per Lap (strokes/min)", lapValues(m.detail.Laps, func(l analysis.LapMetrics) float64 {
			return l.StrokeRateSpm
		})))
	}

	if len(m.detail.HeartRate) > 2 {
		sections = append(sections, m.renderLapChart("Heart Rate per Minute (bpm)", m.detail.HeartRate))
	}

	if len(m.detail.Styles) > 0 {
		sections = append(sections, m.renderStyles())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SessionDetailModel) renderHeader() string {
	s := m.detail.Session
	title := cardTitleStyle.Render(s.Name)

	date := s.StartedAt.Local().Format("Monday, January 2, 2006 at 3:04 PM")
	subtitle := lipgloss.NewStyle().Foreground(mutedColor).Render(date + " (" + humanize.Time(s.StartedAt) + ")")

	stats := fmt.Sprintf("%.0fm pool  •  %s  •  %s samples",
		s.PoolLengthMeters, formatClock(m.detail.Duration), humanize.Comma(int64(s.SampleCount)))
	statsLine := lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(stats)

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, statsLine, "")
}

func (m SessionDetailModel) renderSummary() string {
	r := m.detail.Result
	var lines []string

	lines = append(lines, sectionStyle.Render("Summary"))

	lines = append(lines, "  "+RenderMetric("Laps", fmt.Sprintf("%d (%.0fm)", r.LapCount, r.TotalDistanceMeters)))
	lines = append(lines, "  "+RenderMetric("Strokes", fmt.Sprintf("%d", r.StrokeCount)))
	lines = append(lines, "  "+RenderMetric("Avg lap time", formatDuration(r.AvgLapTimeSeconds)))
	lines = append(lines, "  "+RenderMetric("Avg pace", formatPace100(r.AvgVelocity)))
	lines = append(lines, "  "+RenderMetric("Avg velocity", fmt.Sprintf("%.2f m/s", r.AvgVelocity)))
	lines = append(lines, "  "+RenderMetric("Avg stroke rate", fmt.Sprintf("%.1f /min", r.AvgStrokeRate*60)))
	lines = append(lines, "  "+RenderMetric("Avg stroke length", fmt.Sprintf("%.2f m", r.AvgStrokeLength)))
	lines = append(lines, "  "+RenderMetric("Stroke index", fmt.Sprintf("%.2f", r.AvgStrokeIndex)))

	if hr := r.HeartRate; hr.Avg != nil {
		lines = append(lines, "  "+RenderMetric("Heart rate", fmt.Sprintf("%.0f avg, %.0f max bpm", *hr.Avg, *hr.Max)))
	}

	source := r.Source
	if source == "fallback" {
		source = "whole session (no laps detected)"
	}
	lines = append(lines, "  "+RenderMetric("Computed by", source))
	lines = append(lines, "  "+RenderMetric("Sampling rate", fmt.Sprintf("%.1f Hz", r.SamplingRateHz)))

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderLaps() string {
	var lines []string

	lines = append(lines, sectionStyle.Render("Laps"))

	header := fmt.Sprintf("  %-4s  %7s  %7s  %9s  %7s  %7s  %6s  %-12s",
		"Lap", "Time", "Strokes", "Pace", "SR/min", "DPS", "SI", "Style")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	// Highlight the fastest lap
	fastest := 0
	for i, l := range m.detail.Laps {
		if l.LapTimeSeconds < m.detail.Laps[fastest].LapTimeSeconds {
			fastest = i
		}
	}

	for i, l := range m.detail.Laps {
		style := l.StrokeType
		if style == "" {
			style = "-"
		}
		row := fmt.Sprintf("  %-4d  %7s  %7d  %9s  %7.1f  %7.2f  %6.2f  %-12s",
			l.LapNumber,
			formatDuration(l.LapTimeSeconds),
			l.StrokeCount,
			formatPace100(l.VelocityMetersPerSecond),
			l.StrokeRateSpm,
			l.StrokeLengthMeters,
			l.StrokeIndex,
			style,
		)
		if i == fastest && len(m.detail.Laps) > 1 {
			lines = append(lines, fastestLapStyle.Render(row))
		} else {
			lines = append(lines, row)
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderLapChart(title string, data []float64) string {
	var lines []string

	lines = append(lines, sectionStyle.Render(title))

	if len(data) > 60 {
		data = downsample(data, 60)
	}

	if len(data) > 2 {
		chart := asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(50),
		)
		lines = append(lines, chart)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderStyles() string {
	var lines []string

	title := fmt.Sprintf("Stroke Styles (mostly %s)", m.detail.DominantStyle)
	lines = append(lines, sectionStyle.Render(title))

	for _, s := range strokestyle.Styles() {
		pct := m.detail.Styles[s]
		lines = append(lines, fmt.Sprintf("  %-13s", s)+RenderStyleBar(s, pct, 30)+fmt.Sprintf(" %5.1f%%", pct))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func lapValues(laps []analysis.LapMetrics, f func(analysis.LapMetrics) float64) []float64 {
	values := make([]float64, len(laps))
	for i, l := range laps {
		values[i] = f(l)
	}
	return values
}
