package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Raghvendrath3/conceptForge/internal/config"
	"github.com/Raghvendrath3/conceptForge/internal/di"
)

var version = "dev"

const rootLongDesc string = `ConceptForge is a personal knowledge graph with spaced-repetition review.

Examples:
  conceptforge serve
  conceptforge seed --owner demo
  conceptforge export --owner demo --file workspace.json
  conceptforge token --owner demo`

type rootCommander struct {
	configDir string
}

func newRootCmd() *cobra.Command {
	cmder := &rootCommander{}

	cmd := &cobra.Command{
		Use:           "conceptforge",
		Short:         "ConceptForge knowledge graph",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&cmder.configDir, "config-dir", os.Getenv("CONFIG_DIR"), "Directory holding base.yaml and environment overrides")

	cmd.AddCommand(
		newServeCmd(cmder),
		newSeedCmd(cmder),
		newImportCmd(cmder),
		newExportCmd(cmder),
		newTokenCmd(cmder),
		newVersionCmd(),
	)
	return cmd
}

func (r *rootCommander) loader() *config.Loader {
	return config.NewLoader(r.configDir)
}

func (r *rootCommander) container(ctx context.Context) (*di.Container, func(), error) {
	cfg, err := r.loader().Load()
	if err != nil {
		return nil, nil, err
	}
	return diInit(ctx, cfg)
}

func diInit(ctx context.Context, cfg *config.Config) (*di.Container, func(), error) {
	return di.InitializeContainer(ctx, cfg, di.Version(version))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
