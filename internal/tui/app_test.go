package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
	"github.com/daniellalimbag/dory-app-sub000/internal/service"
	"github.com/daniellalimbag/dory-app-sub000/internal/store"
)

func newTestApp(t *testing.T) (*App, *store.DB) {
	t.Helper()
	db := store.NewTestDB(t)
	analysisSvc := service.NewAnalysisService(nil, db, analysis.DefaultParams(), nil)
	querySvc := service.NewQueryService(db, 25)
	return NewApp(analysisSvc, querySvc, ""), db
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppNavigation(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(key("2"))
	if app.screen != ScreenAnalyze {
		t.Fatalf("screen = %v, want analyze", app.screen)
	}

	app.Update(key("?"))
	if app.screen != ScreenHelp {
		t.Fatalf("screen = %v, want help", app.screen)
	}

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if app.screen != ScreenAnalyze {
		t.Errorf("esc from help: screen = %v, want analyze", app.screen)
	}

	app.Update(key("1"))
	if app.screen != ScreenSessions {
		t.Errorf("screen = %v, want sessions", app.screen)
	}
}

func TestSessionsOpenDetail(t *testing.T) {
	app, db := newTestApp(t)

	session := &store.Session{
		ID:               "s1",
		Name:             "Morning swim",
		PoolLengthMeters: 25,
		StartedAt:        time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC),
	}
	if err := db.CreateSession(session); err != nil {
		t.Fatal(err)
	}

	// Run the load command and feed the result back
	app.Update(app.Init()())
	if len(app.sessions.sessions) != 1 {
		t.Fatalf("loaded %d sessions, want 1", len(app.sessions.sessions))
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should open the session")
	}
	msg, ok := cmd().(OpenSessionDetailMsg)
	if !ok || msg.SessionID != "s1" {
		t.Fatalf("msg = %#v, want OpenSessionDetailMsg for s1", msg)
	}

	_, cmd = app.Update(msg)
	if app.screen != ScreenDetail {
		t.Fatalf("screen = %v, want detail", app.screen)
	}
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app.Update(cmd())

	if app.detail.err != nil {
		t.Fatalf("detail error: %v", app.detail.err)
	}
	if app.detail.detail == nil || app.detail.detail.Session.Name != "Morning swim" {
		t.Errorf("detail = %+v", app.detail.detail)
	}

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if app.screen != ScreenSessions {
		t.Errorf("esc from detail: screen = %v, want sessions", app.screen)
	}
}
