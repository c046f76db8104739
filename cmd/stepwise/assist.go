package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/ehrlich-b/stepwise/internal/agent"
	"github.com/ehrlich-b/stepwise/internal/llm"
	"github.com/ehrlich-b/stepwise/internal/logger"
	"github.com/ehrlich-b/stepwise/internal/session"
	"github.com/ehrlich-b/stepwise/internal/step"
	"github.com/ehrlich-b/stepwise/internal/tools"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const httpTimeout = 30 * time.Second

type turnFunc func(ctx context.Context, s *session.Session, input string) (step.Record, error)

// assistant describes one step-loop assistant command.
type assistant struct {
	profile agent.Profile
	env     tools.Env
	extra   string // appended to the system prompt
	resume  string

	// bind returns the turn function; nil means Orchestrator.RunTurn.
	bind func(o *agent.Orchestrator) turnFunc
}

func (a *app) toolEnv() (tools.Env, error) {
	workDir := a.cfg.Tools.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return tools.Env{}, err
		}
		workDir = wd
	}
	return tools.Env{
		Shell:          a.cfg.Tools.Shell,
		CommandTimeout: a.cfg.CommandTimeout(),
		WorkDir:        workDir,
		GitHub: tools.NewGitHubClient(tools.GitHubOptions{
			BaseURL:           a.cfg.GitHub.APIBase,
			Token:             a.cfg.GitHub.Token,
			Owner:             a.cfg.GitHub.Owner,
			Repo:              a.cfg.GitHub.Repo,
			RequestsPerSecond: a.cfg.GitHub.RequestsPerSecond,
			Timeout:           httpTimeout,
		}),
		Weather: tools.NewWeatherClient(a.cfg.Weather.BaseURL, httpTimeout),
	}, nil
}

func (a *app) runAssistant(cmd *cobra.Command, args []string, as assistant) error {
	ctx := cmd.Context()
	provider, err := llm.NewProvider(a.cfg)
	if err != nil {
		return err
	}

	reg := as.profile.NewRegistry(as.env)
	console := agent.NewConsole(os.Stdout)
	console.SkipRepeats = as.profile.Name == agent.Docs.Name
	// Errors reach the user through the REPL error handler.
	sink := agent.EventFunc(func(e agent.Event) {
		if e.Type != agent.EventTypeError {
			console.Emit(e)
		}
	})
	orch := agent.NewOrchestrator(provider, reg, sink, a.cfg.Agent.MaxSteps)
	orch.SetTemperature(a.cfg.LLM.Temperature)

	turn := turnFunc(orch.RunTurn)
	if as.bind != nil {
		turn = as.bind(orch)
	}

	sess, err := a.session(as)
	if err != nil {
		return err
	}
	title := ""
	runTurn := func(ctx context.Context, line string) error {
		console.Reset()
		if title == "" {
			title = sessionTitle(line)
		}
		_, err := turn(ctx, sess, line)
		a.saveSession(sess, title)
		return err
	}

	if len(args) > 0 {
		return runTurn(ctx, strings.Join(args, " "))
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		ancli.PrintOK(fmt.Sprintf("%s assistant ready (%s). Type 'exit' to quit.\n", as.profile.Name, a.cfg.LLM.Model))
	}
	repl := &agent.REPL{
		In:          os.Stdin,
		Out:         os.Stdout,
		Prompt:      "> ",
		Interactive: interactive,
	}
	return repl.Run(ctx, runTurn)
}

// session starts a fresh transcript or resumes a saved one.
func (a *app) session(as assistant) (*session.Session, error) {
	reg := as.profile.NewRegistry(as.env)
	if as.resume == "" {
		return session.New(as.profile.Name, as.profile.SystemPrompt(reg, as.extra)), nil
	}
	db, err := a.openStore()
	if err != nil {
		return nil, err
	}
	sess, err := db.LoadSession(as.resume)
	if err != nil {
		return nil, err
	}
	if sess.Profile != as.profile.Name {
		return nil, fmt.Errorf("session %s belongs to the %s assistant", sess.ID, sess.Profile)
	}
	ancli.PrintOK(fmt.Sprintf("resumed session %s (%d messages)\n", sess.ID, sess.Len()))
	return sess, nil
}

// saveSession persists sess when saving is enabled. Failures are warnings:
// the conversation goes on.
func (a *app) saveSession(sess *session.Session, title string) {
	if !a.cfg.Agent.SaveSessions {
		return
	}
	db, err := a.openStore()
	if err == nil {
		err = db.SaveSession(sess, title)
	}
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to save session: %v\n", err))
		return
	}
	logger.Debug("Session saved", "id", sess.ID, "messages", sess.Len())
}

func sessionTitle(line string) string {
	line = strings.TrimSpace(line)
	if r := []rune(line); len(r) > 60 {
		return string(r[:60]) + "…"
	}
	return line
}

func addResumeFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "resume", "", "Continue a saved session by ID")
}

func codeCmd(a *app) *cobra.Command {
	var resume string
	cmd := &cobra.Command{
		Use:   "code [request]",
		Short: "Coding assistant: read, write and analyze files, run commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.toolEnv()
			if err != nil {
				return err
			}
			extra := "Working directory: " + env.WorkDir
			return a.runAssistant(cmd, args, assistant{profile: agent.Coder, env: env, extra: extra, resume: resume})
		},
	}
	addResumeFlag(cmd, &resume)
	return cmd
}

func githubCmd(a *app) *cobra.Command {
	var resume string
	cmd := &cobra.Command{
		Use:   "github [request]",
		Short: "Pull request assistant over the GitHub REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.toolEnv()
			if err != nil {
				return err
			}
			var extra string
			if gh := a.cfg.GitHub; gh.Owner != "" && gh.Repo != "" {
				extra = fmt.Sprintf("Default repository: %s/%s. The placeholders {owner} and {repo} in endpoints expand to it.", gh.Owner, gh.Repo)
			}
			if a.cfg.GitHub.Token == "" {
				ancli.PrintWarn("no GitHub token configured; only public data is reachable and rate limits are low\n")
			}
			return a.runAssistant(cmd, args, assistant{profile: agent.GitHub, env: env, extra: extra, resume: resume})
		},
	}
	addResumeFlag(cmd, &resume)
	return cmd
}

func weatherCmd(a *app) *cobra.Command {
	var resume string
	cmd := &cobra.Command{
		Use:   "weather [question]",
		Short: "Weather assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.toolEnv()
			if err != nil {
				return err
			}
			return a.runAssistant(cmd, args, assistant{profile: agent.Weather, env: env, resume: resume})
		},
	}
	addResumeFlag(cmd, &resume)
	return cmd
}
