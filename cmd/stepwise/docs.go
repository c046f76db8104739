package main

import (
	"errors"
	"fmt"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/ehrlich-b/stepwise/internal/agent"
	"github.com/ehrlich-b/stepwise/internal/docs"
	"github.com/ehrlich-b/stepwise/internal/embedding"
	"github.com/spf13/cobra"
)

func docsCmd(a *app) *cobra.Command {
	var (
		resume  string
		sitemap string
		rebuild bool
	)
	cmd := &cobra.Command{
		Use:   "docs [question]",
		Short: "Documentation assistant over a sitemap-indexed site",
		Long: "Indexes the pages of a sitemap on first use (or with --rebuild) and answers " +
			"questions from the retrieved passages, citing their source links.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if sitemap == "" {
				sitemap = a.cfg.Docs.Sitemap
			}
			db, err := a.openStore()
			if err != nil {
				return err
			}
			emb, err := embedding.New(a.cfg)
			if err != nil {
				return err
			}

			existing, err := db.CountDocChunks(emb.Name())
			if err != nil {
				return err
			}
			fetcher := docs.NewFetcher(a.cfg.Docs.RequestsPerSecond, httpTimeout)
			var urls []string
			if rebuild || existing == 0 {
				if sitemap == "" {
					return errors.New("no documentation index yet: set docs.sitemap or pass --sitemap")
				}
				ancli.PrintOK(fmt.Sprintf("loading sitemap %s\n", sitemap))
				urls, err = docs.LoadSitemap(ctx, fetcher, sitemap)
				if err != nil {
					return err
				}
				if len(urls) == 0 {
					return fmt.Errorf("sitemap %s lists no pages", sitemap)
				}
			}

			ix := docs.NewIndex(db, emb, docs.NewSplitter(a.cfg.Docs.ChunkSize, a.cfg.Docs.Overlap()))
			res, err := ix.Build(ctx, fetcher, urls, rebuild)
			if err != nil {
				return err
			}
			ancli.PrintOK(res.String() + "\n")

			retriever := docs.NewRetriever(db, emb, a.cfg.Docs.K, a.cfg.Docs.FetchK, a.cfg.Docs.Lambda)
			env, err := a.toolEnv()
			if err != nil {
				return err
			}
			env.Docs = retriever

			name := a.cfg.Docs.Name
			if name == "" {
				name = "project"
			}
			extra := fmt.Sprintf("You answer questions about the %s documentation. "+
				"If the context holds no answer, say: \"I couldn't find relevant information about that in the %s docs.\"", name, name)

			return a.runAssistant(cmd, args, assistant{
				profile: agent.Docs,
				env:     env,
				extra:   extra,
				resume:  resume,
				bind: func(o *agent.Orchestrator) turnFunc {
					return docs.NewBot(name, retriever, o).Turn
				},
			})
		},
	}
	cmd.Flags().StringVar(&sitemap, "sitemap", "", "Sitemap path or URL (default docs.sitemap)")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Drop and rebuild the documentation index")
	addResumeFlag(cmd, &resume)
	return cmd
}
