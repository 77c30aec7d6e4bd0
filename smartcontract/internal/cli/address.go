package cli

import (
	"fmt"

	vaultsdk "github.com/malbeclabs/solvault/smartcontract/sdk/go/vault"
	"github.com/spf13/cobra"
)

type AddressCmd struct{}

func NewAddressCmd() *AddressCmd {
	return &AddressCmd{}
}

func (c *AddressCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "address [user]",
		Short: "Print the state and vault addresses of a user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGlobals(cmd)
			if err != nil {
				return err
			}
			user, err := g.userFromArgs(args)
			if err != nil {
				return err
			}
			addrs, err := vaultsdk.DeriveAddresses(g.network.VaultProgramID, user)
			if err != nil {
				return fmt.Errorf("failed to derive addresses: %w", err)
			}
			printAddresses(cmd.OutOrStdout(), g.network.VaultProgramID, addrs)
			return nil
		},
	}
}
