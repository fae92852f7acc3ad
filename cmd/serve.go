package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/goslice/internal/app"
	"github.com/philipparndt/goslice/internal/config"
	"github.com/philipparndt/goslice/internal/server"
	"github.com/philipparndt/goslice/internal/transport"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve the viewer to a browser",
		Long: `Start the browser viewer. The optional source is an STL or OpenSCAD file,
or an http(s) URL, loaded at startup. Further models can be dropped onto the page.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServe,
	}
	cmd.Flags().String("listen", config.DefaultListen, "address to listen on")
	cmd.Flags().Bool("watch", false, "reload the source when it changes on disk")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)
	logger := loggerFrom(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub(logger)
	a, err := app.New(cfg.AppOptions(), transport.New(logger), hub, logger)
	if err != nil {
		return err
	}
	srv := server.New(server.Config{
		Controller: a,
		Hub:        hub,
		Addr:       cfg.Listen,
		Logger:     logger,
	})

	eg, egctx := errgroup.WithContext(ctx)

	if len(args) == 1 {
		source := args[0]
		if cfg.Watch && !transport.IsURL(source) {
			if err := a.Watch(egctx, source); err != nil {
				return err
			}
		}
		a.Load(source)
	}

	eg.Go(func() error {
		return a.Run(egctx)
	})
	eg.Go(func() error {
		return srv.Serve(egctx)
	})
	return eg.Wait()
}
