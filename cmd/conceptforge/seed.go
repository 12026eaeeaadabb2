package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Raghvendrath3/conceptForge/internal/config"
	"github.com/Raghvendrath3/conceptForge/internal/seed"
)

const seedLongDesc string = `Seed the demo workspace for an owner.

The demo is a "JavaScript Basics" subject with chapters and concepts linked
by part-of edges, plus a few notes and starter flashcards.

Examples:
  conceptforge seed --owner demo
  conceptforge seed --owner demo --reset`

type seedCommander struct {
	root  *rootCommander
	owner string
	reset bool
}

func newSeedCmd(root *rootCommander) *cobra.Command {
	cmder := &seedCommander{root: root}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo data",
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}
	cmd.Flags().StringVarP(&cmder.owner, "owner", "o", "", "Owner id to seed")
	cmd.Flags().BoolVar(&cmder.reset, "reset", false, "Delete the owner's existing nodes first")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func (c *seedCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	container, cleanup, err := c.root.container(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	warnEphemeral(cmd, container.Config)

	if c.reset {
		deleted, err := seed.Reset(ctx, container.Knowledge, c.owner)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d existing nodes\n", deleted)
	}

	res, err := seed.Demo(ctx, container.Knowledge, container.Study, c.owner)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d nodes, %d edges and %d flashcards for %s\n",
		res.Nodes, res.Edges, res.Flashcards, c.owner)
	return nil
}

func warnEphemeral(cmd *cobra.Command, cfg *config.Config) {
	if cfg.Database.Provider == config.ProviderMemory {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: database.provider is memory; data is discarded when the command exits")
	}
}
