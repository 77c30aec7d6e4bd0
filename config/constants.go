package config

const (
	// The vault program is deployed at the same address on every cluster.
	VaultProgramID = "FGxVc2HAfo2bDARNMtDRzKwCbRCT8XpvBiYUYqPjLhqt"

	// Mainnet constants.
	MainnetRPCURL         = "https://api.mainnet-beta.solana.com"
	MainnetVaultProgramID = VaultProgramID

	// Testnet constants.
	TestnetRPCURL         = "https://api.testnet.solana.com"
	TestnetVaultProgramID = VaultProgramID

	// Devnet constants.
	DevnetRPCURL         = "https://api.devnet.solana.com"
	DevnetVaultProgramID = VaultProgramID

	// Localnet constants.
	LocalnetRPCURL         = "http://localhost:8899"
	LocalnetVaultProgramID = VaultProgramID
)
