package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	vaultsdk "github.com/malbeclabs/solvault/smartcontract/sdk/go/vault"
	"github.com/spf13/cobra"
)

type submitFunc func(ctx context.Context, client *vaultsdk.Client, amount uint64) (solana.Signature, *solanarpc.GetTransactionResult, error)

// runSubmit signs and sends one vault instruction with the configured signer,
// then prints the resulting vault.
func runSubmit(cmd *cobra.Command, action string, withAmount bool, submit submitFunc) error {
	var amount uint64
	if withAmount {
		var err error
		amount, err = amountFromFlags(cmd)
		if err != nil {
			return err
		}
	}

	g, err := loadGlobals(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), g.verbose)

	client, err := g.newClient(log, true)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Debug("Submitting vault instruction", "action", action, "amount", amount, "programID", client.ProgramID(), "rpc", g.network.RPCURL)
	sig, res, err := submit(ctx, client, amount)
	if err != nil {
		return fmt.Errorf("%s failed: %w", action, err)
	}
	printTransaction(cmd.OutOrStdout(), action, sig, res)

	v, err := client.GetVault(ctx, client.Signer().PublicKey())
	if err != nil {
		return fmt.Errorf("failed to get vault: %w", err)
	}
	printVault(cmd.OutOrStdout(), v)
	return nil
}

type CreateCmd struct{}

func NewCreateCmd() *CreateCmd {
	return &CreateCmd{}
}

func (c *CreateCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create the signer's vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, "Create", false, func(ctx context.Context, client *vaultsdk.Client, _ uint64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
				return client.Initialize(ctx)
			})
		},
	}
}

type DepositCmd struct{}

func NewDepositCmd() *DepositCmd {
	return &DepositCmd{}
}

func (c *DepositCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit lamports into the signer's vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, "Deposit", true, func(ctx context.Context, client *vaultsdk.Client, amount uint64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
				return client.Deposit(ctx, amount)
			})
		},
	}
	addAmountFlags(cmd.Flags())
	return cmd
}

type WithdrawCmd struct{}

func NewWithdrawCmd() *WithdrawCmd {
	return &WithdrawCmd{}
}

func (c *WithdrawCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw lamports from the signer's vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, "Withdraw", true, func(ctx context.Context, client *vaultsdk.Client, amount uint64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
				return client.Withdraw(ctx, amount)
			})
		},
	}
	addAmountFlags(cmd.Flags())
	return cmd
}

type CloseCmd struct{}

func NewCloseCmd() *CloseCmd {
	return &CloseCmd{}
}

func (c *CloseCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Empty the signer's vault and close it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, "Close", false, func(ctx context.Context, client *vaultsdk.Client, _ uint64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
				return client.Close(ctx)
			})
		},
	}
}
