package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

// vaultAccounts are the accounts every vault instruction takes, in order.
type vaultAccounts struct {
	user          *runtime.AccountInfo
	state         *runtime.AccountInfo
	vault         *runtime.AccountInfo
	systemProgram *runtime.AccountInfo
}

func parseAccounts(accounts []*runtime.AccountInfo) (*vaultAccounts, error) {
	if len(accounts) < AccountCount {
		return nil, fmt.Errorf("%w: got %d, want %d", runtime.ErrNotEnoughAccountKeys, len(accounts), AccountCount)
	}
	accs := &vaultAccounts{
		user:          accounts[0],
		state:         accounts[1],
		vault:         accounts[2],
		systemProgram: accounts[3],
	}

	if !accs.systemProgram.Key.Equals(solana.SystemProgramID) {
		return nil, fmt.Errorf("%w: system program account is %s", runtime.ErrIncorrectProgramID, accs.systemProgram.Key)
	}
	if !accs.user.IsSigner {
		return nil, fmt.Errorf("%w: user %s", runtime.ErrMissingRequiredSignature, accs.user.Key)
	}
	if !accs.user.IsWritable {
		return nil, fmt.Errorf("%w: user %s", runtime.ErrAccountNotWritable, accs.user.Key)
	}
	if !accs.vault.IsWritable {
		return nil, fmt.Errorf("%w: vault %s", runtime.ErrAccountNotWritable, accs.vault.Key)
	}
	if !accs.vault.IsSystemOwned() {
		return nil, fmt.Errorf("%w: vault %s is owned by %s", runtime.ErrInvalidAccountOwner, accs.vault.Key, accs.vault.Owner)
	}
	return accs, nil
}

// loadState reads the user's VaultState record. A record that was never
// created, or has been closed, is not owned by the program.
func (p *Program) loadState(accs *vaultAccounts) (*VaultState, error) {
	if !accs.state.IsOwnedBy(p.id) {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotOpen, accs.state.Key)
	}
	state, err := DeserializeVaultState(accs.state.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", runtime.ErrInvalidAccountData, err)
	}
	return state, nil
}

// verifyAddresses re-derives the state and vault addresses from the stored
// bumps and checks them against the supplied accounts.
func (p *Program) verifyAddresses(accs *vaultAccounts, state *VaultState) error {
	stateAddr, err := StateSigner(accs.user.Key, state.StateBump).Address(p.id)
	if err != nil || !stateAddr.Equals(accs.state.Key) {
		return fmt.Errorf("%w: state %s", ErrInvalidVaultAddress, accs.state.Key)
	}
	vaultAddr, err := VaultSigner(accs.state.Key, state.VaultBump).Address(p.id)
	if err != nil || !vaultAddr.Equals(accs.vault.Key) {
		return fmt.Errorf("%w: vault %s", ErrInvalidVaultAddress, accs.vault.Key)
	}
	return nil
}

// openVault loads the record and verifies the supplied addresses against it.
func (p *Program) openVault(accs *vaultAccounts) (*VaultState, error) {
	state, err := p.loadState(accs)
	if err != nil {
		return nil, err
	}
	if err := p.verifyAddresses(accs, state); err != nil {
		return nil, err
	}
	return state, nil
}
