package main

import (
	"fmt"
	"io"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/dustin/go-humanize"
	"github.com/ehrlich-b/stepwise/internal/session"
	"github.com/ehrlich-b/stepwise/internal/step"
	"github.com/ehrlich-b/stepwise/internal/store"
	"github.com/spf13/cobra"
)

func historyCmd(a *app) *cobra.Command {
	history := &cobra.Command{
		Use:   "history",
		Short: "List, show and delete saved sessions",
	}
	history.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			sessions, err := db.ListSessions()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("no saved sessions (run an assistant with --save)")
				return nil
			}
			printSessions(os.Stdout, sessions)
			return nil
		},
	})
	history.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			sess, err := db.LoadSession(args[0])
			if err != nil {
				return err
			}
			printTranscript(os.Stdout, sess)
			return nil
		},
	})
	history.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			if err := db.DeleteSession(args[0]); err != nil {
				return err
			}
			ancli.PrintOK("session deleted: " + args[0] + "\n")
			return nil
		},
	})
	return history
}

func printSessions(w io.Writer, sessions []*store.SessionInfo) {
	fmt.Fprintf(w, "%-36s  %-8s  %5s  %-14s  %s\n", "ID", "PROFILE", "MSGS", "UPDATED", "TITLE")
	for _, s := range sessions {
		fmt.Fprintf(w, "%-36s  %-8s  %5d  %-14s  %s\n",
			s.ID, s.Profile, s.MessageCount, humanize.Time(s.UpdatedAt), s.Title)
	}
}

// printTranscript renders step records with their markers and everything
// else verbatim. The system prompt is skipped.
func printTranscript(w io.Writer, sess *session.Session) {
	fmt.Fprintf(w, "session %s (%s, started %s)\n\n", sess.ID, sess.Profile, humanize.Time(sess.CreatedAt))
	for _, m := range sess.Messages() {
		switch m.Role {
		case session.RoleSystem:
			continue
		case session.RoleUser:
			fmt.Fprintf(w, "> %s\n", m.Content)
			continue
		}
		rec, err := step.Parse(m.Content)
		if err != nil {
			fmt.Fprintf(w, "%s\n", m.Content)
			continue
		}
		if rec.Step == step.Action {
			fmt.Fprintf(w, "  [%s] %s → %s\n", rec.Step, rec.Function, rec.InputString())
			continue
		}
		fmt.Fprintf(w, "  [%s] %s\n", rec.Step, rec.ContentString())
	}
}
