package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	vaultprogram "github.com/malbeclabs/solvault/smartcontract/programs/vault"
)

// Addresses are the program derived addresses of one user's vault.
type Addresses struct {
	User      solana.PublicKey
	State     solana.PublicKey
	StateBump uint8
	Vault     solana.PublicKey
	VaultBump uint8
}

// DeriveAddresses derives the state record and vault addresses of user.
func DeriveAddresses(programID solana.PublicKey, user solana.PublicKey) (*Addresses, error) {
	state, stateBump, vault, vaultBump, err := vaultprogram.DeriveVaultPDAs(programID, user)
	if err != nil {
		return nil, fmt.Errorf("failed to derive vault addresses: %w", err)
	}
	return &Addresses{
		User:      user,
		State:     state,
		StateBump: stateBump,
		Vault:     vault,
		VaultBump: vaultBump,
	}, nil
}

func instructionAccounts(programID solana.PublicKey, payer solana.PublicKey, stateWritable bool) ([]*solana.AccountMeta, error) {
	addrs, err := DeriveAddresses(programID, payer)
	if err != nil {
		return nil, err
	}
	return []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: addrs.State, IsSigner: false, IsWritable: stateWritable},
		{PublicKey: addrs.Vault, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}, nil
}
