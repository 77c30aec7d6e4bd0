package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type ShowCmd struct{}

func NewShowCmd() *ShowCmd {
	return &ShowCmd{}
}

func (c *ShowCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "show [user]",
		Short: "Show a user's vault and its balances",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGlobals(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), g.verbose)

			user, err := g.userFromArgs(args)
			if err != nil {
				return err
			}
			client, err := g.newClient(log, false)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			v, err := client.GetVault(ctx, user)
			if err != nil {
				return fmt.Errorf("failed to get vault: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Environment:", g.network.Moniker)
			printVault(cmd.OutOrStdout(), v)
			return nil
		},
	}
}
