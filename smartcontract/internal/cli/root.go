package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/solvault/config"
	vaultsdk "github.com/malbeclabs/solvault/smartcontract/sdk/go/vault"
	"github.com/spf13/cobra"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

const (
	EnvVarEnv     = "VAULT_ENV"
	EnvVarKeypair = "VAULT_KEYPAIR"
)

func Run() ExitCode {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := NewRootCmd().Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vault",
		Short:         "Custodial lamport vaults on Solana.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().StringP("env", "e", envOr(EnvVarEnv, config.EnvDevnet), "The network environment (mainnet-beta, testnet, devnet)")
	rootCmd.PersistentFlags().String("rpc-url", "", "Override the environment's RPC URL")
	rootCmd.PersistentFlags().String("program-id", "", "Override the environment's vault program ID")
	rootCmd.PersistentFlags().String("keypair", envOr(EnvVarKeypair, defaultKeypairPath()), "Path to the signer's keypair file")

	rootCmd.AddCommand(
		NewAddressCmd().Command(),
		NewShowCmd().Command(),
		NewListCmd().Command(),
		NewCreateCmd().Command(),
		NewDepositCmd().Command(),
		NewWithdrawCmd().Command(),
		NewCloseCmd().Command(),
		NewSimulateCmd().Command(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultKeypairPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "solana", "id.json")
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// globals are the persistent flags resolved against the network config.
type globals struct {
	verbose bool
	network *config.NetworkConfig
	keypair string
}

func loadGlobals(cmd *cobra.Command) (*globals, error) {
	flags := cmd.Root().PersistentFlags()
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	env, err := flags.GetString("env")
	if err != nil {
		return nil, fmt.Errorf("failed to get env flag: %w", err)
	}
	rpcURL, err := flags.GetString("rpc-url")
	if err != nil {
		return nil, fmt.Errorf("failed to get rpc-url flag: %w", err)
	}
	programID, err := flags.GetString("program-id")
	if err != nil {
		return nil, fmt.Errorf("failed to get program-id flag: %w", err)
	}
	keypair, err := flags.GetString("keypair")
	if err != nil {
		return nil, fmt.Errorf("failed to get keypair flag: %w", err)
	}

	network, err := config.NetworkConfigForEnv(env)
	if err != nil {
		return nil, fmt.Errorf("failed to get network config: %w", err)
	}
	if rpcURL != "" {
		network.RPCURL = rpcURL
	}
	if programID != "" {
		pk, err := solana.PublicKeyFromBase58(programID)
		if err != nil {
			return nil, fmt.Errorf("invalid program ID: %w", err)
		}
		network.VaultProgramID = pk
	}

	return &globals{
		verbose: verbose,
		network: network,
		keypair: keypair,
	}, nil
}

func (g *globals) loadSigner() (*solana.PrivateKey, error) {
	if g.keypair == "" {
		return nil, fmt.Errorf("no keypair configured, set --keypair or %s", EnvVarKeypair)
	}
	signer, err := solana.PrivateKeyFromSolanaKeygenFile(g.keypair)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", g.keypair, err)
	}
	return &signer, nil
}

// newClient returns a vault client for the configured network. The signer is
// loaded only when requireSigner is set.
func (g *globals) newClient(log *slog.Logger, requireSigner bool) (*vaultsdk.Client, error) {
	var signer *solana.PrivateKey
	if requireSigner {
		var err error
		signer, err = g.loadSigner()
		if err != nil {
			return nil, err
		}
	}
	rpcClient := solanarpc.New(g.network.RPCURL)
	return vaultsdk.New(log, rpcClient, signer, g.network.VaultProgramID), nil
}

// userFromArgs returns the user named in args, or the signer's public key.
func (g *globals) userFromArgs(args []string) (solana.PublicKey, error) {
	if len(args) > 0 {
		pk, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("invalid user public key: %w", err)
		}
		return pk, nil
	}
	signer, err := g.loadSigner()
	if err != nil {
		return solana.PublicKey{}, err
	}
	return signer.PublicKey(), nil
}
