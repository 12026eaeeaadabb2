package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/config"
	"github.com/Raghvendrath3/conceptForge/internal/server"
)

type serveCommander struct {
	root   *rootCommander
	port   int
	reload bool
}

func newServeCmd(root *rootCommander) *cobra.Command {
	cmder := &serveCommander{root: root}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}
	cmd.Flags().IntVarP(&cmder.port, "port", "p", 0, "Listen port (overrides configuration)")
	cmd.Flags().BoolVar(&cmder.reload, "watch-config", true, "Reload the log level when config files change")
	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	loader := c.root.loader()
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if c.port > 0 {
		cfg.Server.Port = c.port
	}

	container, cleanup, err := diInit(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if c.reload {
		watcher, err := config.NewWatcher(loader, container.Logger)
		if err != nil {
			container.Logger.Info("config hot reload disabled", zap.Error(err))
		} else {
			watcher.OnChange(container.ApplyConfig)
			watcher.Start()
			defer watcher.Stop()
		}
	}

	srv := server.New(cfg.Server, container.Router)
	return server.ListenAndRun(ctx, srv, cfg.Server.ShutdownTimeout, container.Logger)
}
