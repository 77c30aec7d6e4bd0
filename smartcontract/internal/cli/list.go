package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type ListCmd struct{}

func NewListCmd() *ListCmd {
	return &ListCmd{}
}

func (c *ListCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every open vault of the program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGlobals(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), g.verbose)

			client, err := g.newClient(log, false)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			records, err := client.ListVaults(ctx)
			if err != nil {
				return fmt.Errorf("failed to list vaults: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Environment:", g.network.Moniker)
			printVaults(cmd.OutOrStdout(), records)
			return nil
		},
	}
}
