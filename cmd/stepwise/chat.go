package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/ehrlich-b/stepwise/internal/agent"
	"github.com/ehrlich-b/stepwise/internal/embedding"
	"github.com/ehrlich-b/stepwise/internal/llm"
	"github.com/ehrlich-b/stepwise/internal/memory"
	"github.com/ehrlich-b/stepwise/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func chatCmd(a *app) *cobra.Command {
	var (
		user   string
		forget bool
	)
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chatbot that remembers facts about you between sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				user = a.cfg.Memory.UserID
			}
			db, err := a.openStore()
			if err != nil {
				return err
			}
			if forget {
				n, err := db.ClearMemories(user)
				if err != nil {
					return err
				}
				ancli.PrintOK(fmt.Sprintf("forgot %d memories of %s\n", n, user))
				return nil
			}

			provider, err := llm.NewProvider(a.cfg)
			if err != nil {
				return err
			}
			emb, err := embedding.New(a.cfg)
			if err != nil {
				return err
			}
			bot := memory.NewChatbot(memory.New(db, emb, provider), provider, user, a.cfg.Memory.Limit)

			sess := session.New("chat", "")
			turn := func(ctx context.Context, line string) error {
				answer, err := bot.Chat(ctx, line)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "💬: %s\n", answer)
				sess.Append(session.RoleUser, line)
				sess.Append(session.RoleAssistant, answer)
				a.saveSession(sess, "chat as "+user)
				return nil
			}

			if len(args) > 0 {
				return turn(cmd.Context(), strings.Join(args, " "))
			}
			repl := &agent.REPL{
				In:          os.Stdin,
				Out:         os.Stdout,
				Prompt:      ">> ",
				Interactive: term.IsTerminal(int(os.Stdin.Fd())),
			}
			return repl.Run(cmd.Context(), turn)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Memory owner (default memory.user_id)")
	cmd.Flags().BoolVar(&forget, "forget", false, "Delete every memory of the user and exit")
	return cmd
}
