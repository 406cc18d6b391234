package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/daniellalimbag/dory-app-sub000/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenSessions Screen = iota
	ScreenDetail
	ScreenAnalyze
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	sessions SessionsModel
	detail   SessionDetailModel
	analyze  AnalyzeModel
	help     HelpModel

	// Services
	queryService    *service.QueryService
	analysisService *service.AnalysisService

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies. remoteURL is shown on the
// analyze screen and may be empty.
func NewApp(analysisService *service.AnalysisService, queryService *service.QueryService, remoteURL string) *App {
	return &App{
		screen:          ScreenSessions,
		queryService:    queryService,
		analysisService: analysisService,
		sessions:        NewSessionsModel(queryService),
		analyze:         NewAnalyzeModel(analysisService, remoteURL),
		help:            NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.sessions.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings (unless an analysis is running)
		if a.screen != ScreenAnalyze || !a.analyze.running {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenSessions
				return a, a.sessions.Init()
			case "2", "a":
				if a.screen != ScreenAnalyze {
					a.screen = ScreenAnalyze
					return a, a.analyze.Init()
				}
				// Let 'a' fall through to the analyze screen when already there
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				switch a.screen {
				case ScreenHelp:
					a.screen = a.prevScreen
					return a, nil
				case ScreenDetail:
					a.screen = ScreenSessions
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case OpenSessionDetailMsg:
		a.screen = ScreenDetail
		a.detail = NewSessionDetailModel(a.queryService, msg.SessionID, a.width, a.height)
		return a, a.detail.Init()

	case AnalyzeCompleteMsg:
		a.status = msg.Summary
		return a, a.sessions.Init()

	case sessionsLoadedMsg:
		// The list reloads in the background after an analysis
		m, cmd := a.sessions.Update(msg)
		a.sessions = m.(SessionsModel)
		return a, cmd
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenSessions:
		var m tea.Model
		m, cmd = a.sessions.Update(msg)
		a.sessions = m.(SessionsModel)
	case ScreenDetail:
		var m tea.Model
		m, cmd = a.detail.Update(msg)
		a.detail = m.(SessionDetailModel)
	case ScreenAnalyze:
		var m tea.Model
		m, cmd = a.analyze.Update(msg)
		a.analyze = m.(AnalyzeModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenSessions:
		content = a.sessions.View()
	case ScreenDetail:
		content = a.detail.View()
	case ScreenAnalyze:
		content = a.analyze.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Dory Swim Analyzer")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Sessions", ScreenSessions},
		{"2", "Analyze", ScreenAnalyze},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		active := a.screen == item.screen || (item.screen == ScreenSessions && a.screen == ScreenDetail)
		if active {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

// AnalyzeCompleteMsg is sent when an analysis run finishes
type AnalyzeCompleteMsg struct {
	Summary string
}

// OpenSessionDetailMsg asks the app to show one session
type OpenSessionDetailMsg struct {
	SessionID string
}
