package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/lineage/internal/application/handlers"
	"github.com/ersonp/lineage/internal/infrastructure/datasource"
	"github.com/ersonp/lineage/internal/infrastructure/httpapi"
	"github.com/ersonp/lineage/internal/infrastructure/watcher"
)

type serveFlags struct {
	host  string
	port  int
	watch bool
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph page and relationship API over HTTP",
		Long: `Loads and derives the dataset, then serves:
  GET /               interactive graph page
  GET /api/graph      nodes and links
  GET /api/people     people, filtered with ?q=
  GET /api/people/:id relatives of one person
  GET /api/derived    derived sibling and cousin edges
  GET /metrics        Prometheus metrics

With --watch the dataset is reloaded when the file changes. A reload that
fails keeps the previous graph in service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "Listen host (default from config server.host)")
	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Listen port (default from config server.port)")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Reload when the dataset file changes")

	return cmd
}

func runServe(cmd *cobra.Command, flags serveFlags) error {
	ctx := cmd.Context()

	return withGraphHandler(ctx, func(d *Deps, h *handlers.GraphHandler, src *datasource.Opened) error {
		serverCfg := d.Config.Server
		if flags.host != "" {
			serverCfg.Host = flags.host
		}
		if flags.port != 0 {
			serverCfg.Port = flags.port
		}
		if flags.watch {
			serverCfg.Watch = true
		}

		server := httpapi.NewServer(h, httpapi.Options{Title: d.Config.Render.Title}, d.Logger)
		if err := server.Reload(ctx); err != nil {
			return err
		}

		if serverCfg.Watch {
			w, err := watcher.New(src.Path, serverCfg.Debounce, func(ctx context.Context) {
				// Reload logs its own failures.
				_ = server.Reload(ctx)
			}, d.Logger)
			if err != nil {
				return err
			}
			go func() {
				if err := w.Run(ctx); err != nil {
					d.Logger.Error("watcher stopped", zap.Error(err))
				}
			}()
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", src.Describe(), serverCfg.Addr())
		return server.ListenAndServe(ctx, serverCfg.Addr())
	})
}
