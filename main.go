package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/daniellalimbag/dory-app-sub000/internal/auth"
	"github.com/daniellalimbag/dory-app-sub000/internal/config"
	"github.com/daniellalimbag/dory-app-sub000/internal/metricsapi"
	"github.com/daniellalimbag/dory-app-sub000/internal/service"
	"github.com/daniellalimbag/dory-app-sub000/internal/store"
	"github.com/daniellalimbag/dory-app-sub000/internal/strokestyle"
	"github.com/daniellalimbag/dory-app-sub000/internal/tui"
)

const usage = `usage: dory [-db path] [command]

commands:
  (none)                         open the terminal UI
  import <file.csv> [-name N] [-pool M] [-swimmer ID] [-exercise ID]
  analyze [-local]               analyze sessions with new samples
  export <session-id> [-dir D]   write laps and samples as Parquet
  init                           create an example config file
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("dory", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	dbPath := fs.String("db", "", "database file (default ~/.dory/data.db)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	args = fs.Args()

	if len(args) > 0 && args[0] == "init" {
		return initConfig()
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(args) == 0 {
		return runTUI(ctx, cfg, db)
	}

	switch args[0] {
	case "import":
		return runImport(cfg, db, args[1:])
	case "analyze":
		return runAnalyze(ctx, cfg, db, args[1:])
	case "export":
		return runExport(cfg, db, args[1:])
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func initConfig() error {
	if err := config.CreateExample(); err != nil {
		return fmt.Errorf("creating example config: %w", err)
	}
	configDir, _ := config.GetConfigDir()
	fmt.Printf("Config file at:\n  %s/config.json\n\n", configDir)
	fmt.Println("Set metrics_api.base_url and api_key to use a metrics service,")
	fmt.Println("or clear base_url to always analyze on this machine.")
	return nil
}

func runTUI(ctx context.Context, cfg *config.Config, db *store.DB) error {
	analysisSvc, err := newAnalysisService(ctx, cfg, db, false)
	if err != nil {
		return err
	}
	querySvc := service.NewQueryService(db, cfg.Pipeline.PoolLengthMeters)

	app := tui.NewApp(analysisSvc, querySvc, cfg.MetricsAPI.BaseURL)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func runImport(cfg *config.Config, db *store.DB, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	name := fs.String("name", "", "session name (default \"Swim <date>\")")
	pool := fs.Float64("pool", cfg.Pipeline.PoolLengthMeters, "pool length in metres")
	swimmer := fs.String("swimmer", "", "swimmer id")
	exercise := fs.String("exercise", "", "exercise id")
	path, err := parseWithArg(fs, args, "file.csv")
	if err != nil {
		return err
	}

	querySvc := service.NewQueryService(db, cfg.Pipeline.PoolLengthMeters)
	session, skipped, err := querySvc.ImportCSV(path, service.ImportOptions{
		Name:             *name,
		SwimmerID:        *swimmer,
		ExerciseID:       *exercise,
		PoolLengthMeters: *pool,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Imported %q: %s samples, %.0fm pool\n", session.Name, humanize.Comma(int64(session.SampleCount)), session.PoolLengthMeters)
	if skipped > 0 {
		fmt.Printf("Skipped %d rows without a usable timestamp\n", skipped)
	}
	fmt.Printf("Session id: %s\n", session.ID)
	return nil
}

func runAnalyze(ctx context.Context, cfg *config.Config, db *store.DB, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	local := fs.Bool("local", false, "skip the metrics service")
	if err := fs.Parse(args); err != nil {
		return err
	}

	analysisSvc, err := newAnalysisService(ctx, cfg, db, *local)
	if err != nil {
		return err
	}

	progress := make(chan service.AnalyzeProgress)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			if p.Error != nil {
				log.Printf("analyze: %v", p.Error)
			} else if p.CurrentSession != "" && p.Completed < p.Total {
				fmt.Printf("[%d/%d] %s\n", p.Completed+1, p.Total, p.CurrentSession)
			}
		}
	}()

	start := time.Now()
	result, err := analysisSvc.AnalyzeAll(ctx, progress)
	<-done
	if err != nil {
		return err
	}

	if result.SessionsAnalyzed == 0 && len(result.Errors) == 0 {
		fmt.Println("Nothing new to analyze")
		return nil
	}
	fmt.Printf("Analyzed %d sessions in %s (service %d, device %d, no laps %d)\n",
		result.SessionsAnalyzed, time.Since(start).Round(time.Millisecond),
		result.Remote, result.Device, result.Fallback)
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d sessions failed", len(result.Errors))
	}
	return nil
}

func runExport(cfg *config.Config, db *store.DB, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dir := fs.String("dir", cfg.Export.OutputDir, "output directory")
	id, err := parseWithArg(fs, args, "session-id")
	if err != nil {
		return err
	}

	querySvc := service.NewQueryService(db, cfg.Pipeline.PoolLengthMeters)
	files, err := querySvc.ExportSession(id, *dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

// parseWithArg parses flags around a single required positional argument
func parseWithArg(fs *flag.FlagSet, args []string, argName string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() == 0 {
		return "", fmt.Errorf("%s: missing <%s>", fs.Name(), argName)
	}
	arg := fs.Arg(0)
	// flags may also follow the argument
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return "", err
	}
	if fs.NArg() > 0 {
		return "", fmt.Errorf("%s: unexpected argument %q", fs.Name(), fs.Arg(0))
	}
	return arg, nil
}

func newAnalysisService(ctx context.Context, cfg *config.Config, db *store.DB, local bool) (*service.AnalysisService, error) {
	var classifier strokestyle.Classifier
	if cfg.Classifier.ModelPath != "" {
		model, err := strokestyle.LoadLinearModel(cfg.Classifier.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("loading stroke model: %w", err)
		}
		classifier = model
	}

	var remote service.RemoteAnalyzer
	if cfg.MetricsAPI.Enabled() && !local {
		tokenSource, err := auth.NewSource(ctx, cfg.MetricsAPI, db)
		if err != nil {
			return nil, fmt.Errorf("metrics API auth: %w", err)
		}
		remote = metricsapi.NewClient(cfg.MetricsAPI.BaseURL, tokenSource, metricsapi.Options{
			Timeout:           time.Duration(cfg.MetricsAPI.TimeoutSeconds) * time.Second,
			RequestsPerMinute: cfg.MetricsAPI.RequestsPerMinute,
		})
	}

	return service.NewAnalysisService(remote, db, cfg.Pipeline, classifier), nil
}
