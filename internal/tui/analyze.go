package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/daniellalimbag/dory-app-sub000/internal/service"
)

// AnalyzeModel is the analyze screen model
type AnalyzeModel struct {
	analysisService *service.AnalysisService
	remoteURL       string
	running         bool
	progress        service.AnalyzeProgress
	updates         chan service.AnalyzeProgress
	result          *service.AnalyzeResult
	err             error
	done            bool
}

// NewAnalyzeModel creates a new analyze model
func NewAnalyzeModel(as *service.AnalysisService, remoteURL string) AnalyzeModel {
	return AnalyzeModel{
		analysisService: as,
		remoteURL:       remoteURL,
	}
}

// Init initializes the analyze screen
func (m AnalyzeModel) Init() tea.Cmd {
	return nil
}

// analyzeDoneMsg is sent when AnalyzeAll returns
type analyzeDoneMsg struct {
	result *service.AnalyzeResult
	err    error
}

type analyzeProgressMsg struct {
	progress service.AnalyzeProgress
	ok       bool
}

// Update handles messages
func (m AnalyzeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case analyzeProgressMsg:
		if !msg.ok {
			return m, nil
		}
		if msg.progress.Total > 0 {
			m.progress.Total = msg.progress.Total
		}
		m.progress.Completed = msg.progress.Completed
		m.progress.CurrentSession = msg.progress.CurrentSession
		return m, waitForProgress(m.updates)

	case analyzeDoneMsg:
		m.running = false
		m.done = true
		m.result = msg.result
		m.err = msg.err
		summary := ""
		if msg.err == nil && msg.result != nil {
			summary = fmt.Sprintf("Analyzed %d sessions", msg.result.SessionsAnalyzed)
		}
		return m, func() tea.Msg { return AnalyzeCompleteMsg{Summary: summary} }

	case tea.KeyMsg:
		if !m.running {
			switch msg.String() {
			case "enter", "a":
				m.running = true
				m.done = false
				m.err = nil
				m.result = nil
				m.progress = service.AnalyzeProgress{}
				// Buffered so AnalyzeAll never blocks on a slow render
				m.updates = make(chan service.AnalyzeProgress, 16)
				return m, tea.Batch(m.runAnalyze(m.updates), waitForProgress(m.updates))
			}
		}
	}
	return m, nil
}

func (m AnalyzeModel) runAnalyze(updates chan service.AnalyzeProgress) tea.Cmd {
	return func() tea.Msg {
		result, err := m.analysisService.AnalyzeAll(context.Background(), updates)
		return analyzeDoneMsg{result: result, err: err}
	}
}

func waitForProgress(updates chan service.AnalyzeProgress) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-updates
		return analyzeProgressMsg{progress: p, ok: ok}
	}
}

// View renders the analyze screen
func (m AnalyzeModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Analyze Sessions")
	sections = append(sections, title)

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 'a' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.running {
		sections = append(sections, successStyle.Render("\n  Analysis complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to sessions"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.running {
		sections = append(sections, m.renderProgress())
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m AnalyzeModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This will analyze every session with new samples:")
	lines = append(lines, "")
	lines = append(lines, "  1. Label stroke styles if the samples have none")
	if m.remoteURL != "" {
		lines = append(lines, "  2. Ask the metrics service at "+m.remoteURL)
		lines = append(lines, "  3. Fall back to on-device detection if it is unreachable")
	} else {
		lines = append(lines, "  2. Detect strokes and laps on this machine")
	}
	lines = append(lines, "")

	if status := m.analysisService.RateLimitStatus(); status >= 0 {
		lines = append(lines, statusStyle.Render(fmt.Sprintf("  API requests left this minute: %d", status)))
		lines = append(lines, "")
	}
	lines = append(lines, statusStyle.Render("  Press 'a' or Enter to start"))

	return strings.Join(lines, "\n")
}

func (m AnalyzeModel) renderProgress() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  Analyzing...")
	lines = append(lines, "")

	if m.progress.Total > 0 {
		pct := float64(m.progress.Completed) / float64(m.progress.Total)
		lines = append(lines, "  "+RenderProgressBar(pct, 40)+fmt.Sprintf(" %d/%d", m.progress.Completed, m.progress.Total))
		if m.progress.CurrentSession != "" {
			lines = append(lines, statusStyle.Render("  "+truncateName(m.progress.CurrentSession, 40)))
		}
	} else {
		lines = append(lines, statusStyle.Render("  Looking for new sessions..."))
	}

	return strings.Join(lines, "\n")
}

func (m AnalyzeModel) renderSummary() string {
	if m.result == nil {
		return ""
	}

	var lines []string
	r := m.result
	lines = append(lines, "")

	if r.SessionsAnalyzed == 0 && len(r.Errors) == 0 {
		lines = append(lines, statusStyle.Render("  Nothing new to analyze"))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, successStyle.Render(fmt.Sprintf("  %d sessions analyzed", r.SessionsAnalyzed)))
	if r.Remote > 0 {
		lines = append(lines, "  "+RenderMetric("Metrics service", fmt.Sprintf("%d", r.Remote)))
	}
	if r.Device > 0 {
		lines = append(lines, "  "+RenderMetric("On device", fmt.Sprintf("%d", r.Device)))
	}
	if r.Fallback > 0 {
		lines = append(lines, "  "+RenderMetric("No laps found", fmt.Sprintf("%d", r.Fallback)))
	}
	if r.Labeled > 0 {
		lines = append(lines, "  "+RenderMetric("Styles labeled", fmt.Sprintf("%d", r.Labeled)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
		for i, err := range r.Errors {
			if i == 3 {
				lines = append(lines, statusStyle.Render(fmt.Sprintf("  ...and %d more", len(r.Errors)-3)))
				break
			}
			lines = append(lines, statusStyle.Render("  "+truncateName(err.Error(), 70)))
		}
	}

	return strings.Join(lines, "\n")
}
