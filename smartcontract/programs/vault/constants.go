package vault

// PDA seeds for the vault program
const (
	StateSeed = "state"
	VaultSeed = "vault"
)

const (
	// VaultStateSize is the allocated size of a VaultState record: the account
	// discriminator followed by the two bump bytes.
	VaultStateSize = discriminatorSize + 2

	// VaultSpace is the data length of a vault sub-account. Vaults hold
	// lamports only.
	VaultSpace = 0

	// AccountCount is the number of accounts every vault instruction takes.
	AccountCount = 4
)
