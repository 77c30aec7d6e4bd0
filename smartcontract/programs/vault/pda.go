package vault

import (
	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

// DeriveStatePDA derives the address of a user's VaultState record.
// Seeds: ["state", user]
func DeriveStatePDA(programID solana.PublicKey, user solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(stateSeeds(user), programID)
}

// DeriveVaultPDA derives the address of the vault owned by a state record.
// Seeds: ["vault", state]
func DeriveVaultPDA(programID solana.PublicKey, state solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(vaultSeeds(state), programID)
}

// DeriveVaultPDAs derives both addresses for a user.
func DeriveVaultPDAs(programID solana.PublicKey, user solana.PublicKey) (state solana.PublicKey, stateBump uint8, vault solana.PublicKey, vaultBump uint8, err error) {
	state, stateBump, err = DeriveStatePDA(programID, user)
	if err != nil {
		return solana.PublicKey{}, 0, solana.PublicKey{}, 0, err
	}
	vault, vaultBump, err = DeriveVaultPDA(programID, state)
	if err != nil {
		return solana.PublicKey{}, 0, solana.PublicKey{}, 0, err
	}
	return state, stateBump, vault, vaultBump, nil
}

// StateSigner returns the seeds that sign for a user's state record.
func StateSigner(user solana.PublicKey, stateBump uint8) runtime.SignerSeeds {
	return runtime.NewSignerSeeds(stateBump, stateSeeds(user)...)
}

// VaultSigner returns the seeds that sign for the vault of a state record.
func VaultSigner(state solana.PublicKey, vaultBump uint8) runtime.SignerSeeds {
	return runtime.NewSignerSeeds(vaultBump, vaultSeeds(state)...)
}

func stateSeeds(user solana.PublicKey) [][]byte {
	return [][]byte{[]byte(StateSeed), user.Bytes()}
}

func vaultSeeds(state solana.PublicKey) [][]byte {
	return [][]byte{[]byte(VaultSeed), state.Bytes()}
}
