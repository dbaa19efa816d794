package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clusterdash/internal/cache"
	"clusterdash/internal/dataset"
	"clusterdash/internal/media"
	"clusterdash/internal/server"
)

// newServeCmd creates the serve subcommand.
func newServeCmd(a *app) *cobra.Command {
	var addr string
	var watch bool
	var noImages bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long:  "Load the dataset and serve the dashboard pages, the JSON API and CSV exports until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			if cmd.Flags().Changed("watch") {
				a.cfg.Dataset.Watch = watch
			}

			store := dataset.NewStore(dataset.NewLoader(a.log))
			if _, err := store.Load(a.cfg.Dataset.Path); err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}

			charts, err := cache.New(ctx, a.cfg.Cache)
			if err != nil {
				return fmt.Errorf("init cache: %w", err)
			}
			defer charts.Close()

			opts := server.Options{
				Store:   store,
				BaseURL: a.cfg.Server.BaseURL,
				Render:  a.cfg.Render,
				Seed:    a.cfg.Dataset.SampleSeed,
				Cache:   charts,
				Logger:  a.log,
			}

			if !noImages {
				opts.Fetcher = media.NewFetcher(a.cfg.Fetch, a.log)
			}

			srv, err := server.New(opts)
			if err != nil {
				return err
			}

			if a.cfg.Dataset.Watch {
				w, err := dataset.NewWatcher(store, a.log)
				if err != nil {
					return fmt.Errorf("watch dataset: %w", err)
				}

				w.OnReload(func(dc *dataset.Context) {
					a.log.Info("dashboard serving new dataset", "hash", dc.Meta.Short())
				})

				if err := w.Start(ctx); err != nil {
					return fmt.Errorf("watch dataset: %w", err)
				}
				defer w.Stop()
			}

			return srv.Run(ctx, a.cfg.Server.Addr, a.cfg.Server.ReadTimeout())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the dataset when the file changes")
	cmd.Flags().BoolVar(&noImages, "no-images", false, "Link images instead of downloading them")

	return cmd
}
