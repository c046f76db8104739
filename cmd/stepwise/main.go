package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/ehrlich-b/stepwise/internal/config"
	"github.com/ehrlich-b/stepwise/internal/logger"
	"github.com/ehrlich-b/stepwise/internal/store"
	"github.com/spf13/cobra"
)

// app carries the global flags and lazily opened resources.
type app struct {
	configPath string
	debug      bool
	save       bool
	maxSteps   int

	cfg *config.Config
	db  *store.Store
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:   "stepwise",
		Short: "Single-step tool-calling assistants for the terminal",
		Long: "Runs terminal assistants that reason one JSON step at a time " +
			"(plan, action, observe, output) and call local tools between steps.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.stepwise/config.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Log at debug level")
	root.PersistentFlags().BoolVar(&a.save, "save", false, "Persist the session transcript")
	root.PersistentFlags().IntVar(&a.maxSteps, "max-steps", 0, "Step budget per turn (default from config)")

	root.AddCommand(
		codeCmd(a),
		githubCmd(a),
		weatherCmd(a),
		docsCmd(a),
		chatCmd(a),
		consensusCmd(a),
		symptomsCmd(a),
		tokenizeCmd(),
		historyCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	a.close()
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("%v\n", err))
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if a.debug || misc.Truthy(os.Getenv("DEBUG")) {
		level = "debug"
	}
	if err := logger.Init(level, cfg.Logging.File); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if a.maxSteps > 0 {
		cfg.Agent.MaxSteps = a.maxSteps
	}
	if a.save {
		cfg.Agent.SaveSessions = true
	}
	a.cfg = cfg
	logger.Debug("Config loaded", "path", path, "model", cfg.LLM.Model, "max_steps", cfg.Agent.MaxSteps)
	return nil
}

// openStore opens the database on first use.
func (a *app) openStore() (*store.Store, error) {
	if a.db != nil {
		return a.db, nil
	}
	dbPath, err := a.cfg.DBPath()
	if err != nil {
		return nil, err
	}
	userDir, err := config.UserDir()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(userDir, dbPath); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}
