package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	vaultprogram "github.com/malbeclabs/solvault/smartcontract/programs/vault"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
	vaultsdk "github.com/malbeclabs/solvault/smartcontract/sdk/go/vault"
	"github.com/malbeclabs/solvault/smartcontract/svm"
	"github.com/spf13/cobra"
)

const (
	defaultSimulateFund   = "2"
	defaultSimulateAmount = 500_000_000
)

type SimulateCmd struct{}

func NewSimulateCmd() *SimulateCmd {
	return &SimulateCmd{}
}

func (c *SimulateCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a vault lifecycle on an in-memory ledger",
		Long: "Deploys the vault program on an in-memory ledger, funds a fresh user and runs " +
			"create, deposit, withdraw and close, printing balances after each step.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGlobals(cmd)
			if err != nil {
				return err
			}
			fundStr, err := cmd.Flags().GetString("fund")
			if err != nil {
				return fmt.Errorf("failed to get fund flag: %w", err)
			}
			fund, err := ParseSOL(fundStr)
			if err != nil {
				return fmt.Errorf("invalid --fund: %w", err)
			}
			amount, err := amountFromFlags(cmd)
			if errors.Is(err, ErrAmountRequired) {
				amount, err = defaultSimulateAmount, nil
			}
			if err != nil {
				return err
			}

			log := newLogger(cmd.ErrOrStderr(), g.verbose)
			return simulate(cmd.Context(), log, cmd.OutOrStdout(), g.network.VaultProgramID, fund, amount, g.verbose)
		},
	}
	cmd.Flags().String("fund", defaultSimulateFund, "SOL airdropped to the simulated user")
	addAmountFlags(cmd.Flags())
	return cmd
}

type simulateStep struct {
	name string
	run  func(ctx context.Context) (solana.Signature, *solanarpc.GetTransactionResult, error)
}

func simulate(ctx context.Context, log *slog.Logger, w io.Writer, programID solana.PublicKey, fund, amount uint64, verbose bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ledger, err := svm.New(&svm.Config{
		Logger:   log,
		Programs: []runtime.Program{vaultprogram.New(programID)},
	})
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}

	user := solana.NewWallet().PrivateKey
	if err := ledger.Airdrop(user.PublicKey(), fund); err != nil {
		return fmt.Errorf("failed to fund user: %w", err)
	}
	addrs, err := vaultsdk.DeriveAddresses(programID, user.PublicKey())
	if err != nil {
		return err
	}
	client := vaultsdk.New(log, ledger, &user, programID, vaultsdk.WithPollInterval(time.Millisecond))

	steps := []simulateStep{
		{name: "Create", run: client.Initialize},
		{name: "Deposit", run: func(ctx context.Context) (solana.Signature, *solanarpc.GetTransactionResult, error) {
			return client.Deposit(ctx, amount)
		}},
		{name: "Withdraw", run: func(ctx context.Context) (solana.Signature, *solanarpc.GetTransactionResult, error) {
			return client.Withdraw(ctx, amount)
		}},
		{name: "Close", run: client.Close},
	}

	fmt.Fprintln(w, "Program:", programID)
	printAddresses(w, programID, addrs)

	table := newTable(w, "Step", "User\n(SOL)", "State\n(lamports)", "Vault\n(lamports)", "Fee\n(lamports)")
	appendRow := func(step string, fee uint64) {
		table.Append([]string{
			step,
			FormatSOL(ledger.Balance(user.PublicKey())),
			formatLamports(ledger.Balance(addrs.State)),
			formatLamports(ledger.Balance(addrs.Vault)),
			formatLamports(fee),
		})
	}
	appendRow("Start", 0)

	var snapshot *vaultsdk.Vault

	for _, step := range steps {
		_, res, err := step.run(ctx)
		if err != nil {
			table.Render()
			return fmt.Errorf("%s failed: %w", step.name, err)
		}
		if verbose {
			for _, line := range res.Meta.LogMessages {
				log.Debug(line, "step", step.name)
			}
		}
		appendRow(step.name, res.Meta.Fee)

		if step.name == "Deposit" {
			snapshot, err = client.GetVault(ctx, user.PublicKey())
			if err != nil {
				return fmt.Errorf("failed to get vault: %w", err)
			}
		}
	}
	table.Render()

	if snapshot != nil {
		fmt.Fprintln(w, "After Deposit:")
		printVault(w, snapshot)
	}
	return nil
}
