package config

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

const (
	EnvMainnetBeta = "mainnet-beta"
	EnvMainnet     = "mainnet"
	EnvTestnet     = "testnet"
	EnvDevnet      = "devnet"
	EnvLocalnet    = "localnet"

	// Environment variable overrides, applied after the per-env defaults.
	EnvVarRPCURL    = "VAULT_RPC_URL"
	EnvVarProgramID = "VAULT_PROGRAM_ID"
)

var (
	ErrInvalidEnvironment = fmt.Errorf("invalid environment")
)

type NetworkConfig struct {
	Moniker        string
	RPCURL         string
	VaultProgramID solana.PublicKey
}

func NetworkConfigForEnv(env string) (*NetworkConfig, error) {
	var (
		moniker   string
		rpcURL    string
		programID string
	)
	switch env {
	case EnvMainnetBeta, EnvMainnet:
		moniker, rpcURL, programID = EnvMainnetBeta, MainnetRPCURL, MainnetVaultProgramID
	case EnvTestnet:
		moniker, rpcURL, programID = EnvTestnet, TestnetRPCURL, TestnetVaultProgramID
	case EnvDevnet:
		moniker, rpcURL, programID = EnvDevnet, DevnetRPCURL, DevnetVaultProgramID
	case EnvLocalnet:
		moniker, rpcURL, programID = EnvLocalnet, LocalnetRPCURL, LocalnetVaultProgramID
	default:
		// We intentionally do not include localnet in the error message.
		return nil, fmt.Errorf("%w %q, must be one of: %s, %s, %s", ErrInvalidEnvironment, env, EnvMainnetBeta, EnvTestnet, EnvDevnet)
	}

	vaultProgramID, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vault program ID: %w", err)
	}
	config := &NetworkConfig{
		Moniker:        moniker,
		RPCURL:         rpcURL,
		VaultProgramID: vaultProgramID,
	}

	if v := os.Getenv(EnvVarRPCURL); v != "" {
		config.RPCURL = v
	}
	if v := os.Getenv(EnvVarProgramID); v != "" {
		override, err := solana.PublicKeyFromBase58(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", EnvVarProgramID, err)
		}
		config.VaultProgramID = override
	}

	return config, nil
}
