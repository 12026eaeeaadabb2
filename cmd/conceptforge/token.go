package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Raghvendrath3/conceptForge/internal/di"
)

type tokenCommander struct {
	root  *rootCommander
	owner string
	email string
}

func newTokenCmd(root *rootCommander) *cobra.Command {
	cmder := &tokenCommander{root: root}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development JWT for an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}
	cmd.Flags().StringVarP(&cmder.owner, "owner", "o", "", "Owner id, used as the token subject")
	cmd.Flags().StringVar(&cmder.email, "email", "", "Optional email claim")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func (c *tokenCommander) run(cmd *cobra.Command) error {
	cfg, err := c.root.loader().Load()
	if err != nil {
		return err
	}
	if cfg.Security.JWTSecret == "" {
		return errors.New("security.jwt_secret is not set (JWT_SECRET)")
	}
	gen, err := di.NewTokenGenerator(cfg)
	if err != nil {
		return err
	}
	token, err := gen.GenerateToken(c.owner, c.email, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
