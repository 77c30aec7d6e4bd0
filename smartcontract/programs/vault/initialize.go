package vault

import (
	"fmt"

	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

func (p *Program) initialize(ctx runtime.Context, accs *vaultAccounts) error {
	statePDA, stateBump, vaultPDA, vaultBump, err := DeriveVaultPDAs(p.id, accs.user.Key)
	if err != nil {
		return fmt.Errorf("failed to derive vault addresses: %w", err)
	}
	if !accs.state.Key.Equals(statePDA) {
		return fmt.Errorf("%w: state %s, want %s", ErrInvalidVaultAddress, accs.state.Key, statePDA)
	}
	if !accs.vault.Key.Equals(vaultPDA) {
		return fmt.Errorf("%w: vault %s, want %s", ErrInvalidVaultAddress, accs.vault.Key, vaultPDA)
	}
	if !accs.state.IsSystemOwned() || len(accs.state.Data) > 0 {
		return fmt.Errorf("%w: state %s", ErrAddressCollision, accs.state.Key)
	}
	if !accs.state.IsWritable {
		return fmt.Errorf("%w: state %s", runtime.ErrAccountNotWritable, accs.state.Key)
	}

	rent := ctx.Rent()
	stateRent := rent.MinimumBalance(VaultStateSize)
	vaultRent := rent.MinimumBalance(VaultSpace)

	// A pre-funded state address only needs topping up.
	var stateTopUp uint64
	if accs.state.Lamports < stateRent {
		stateTopUp = stateRent - accs.state.Lamports
	}
	need := stateTopUp + vaultRent + rent.MinimumBalance(accs.user.DataLen())
	if accs.user.Lamports < need {
		return fmt.Errorf("%w: user has %d lamports, needs %d", ErrInsufficientFunds, accs.user.Lamports, need)
	}

	stateSigner := StateSigner(accs.user.Key, stateBump)
	if accs.state.IsUninitialized() {
		if err := runtime.CreateAccountSigned(ctx, accs.user, accs.state, stateRent, VaultStateSize, p.id, stateSigner); err != nil {
			return fmt.Errorf("failed to create state account: %w", err)
		}
	} else {
		if stateTopUp > 0 {
			if err := runtime.Transfer(ctx, accs.user, accs.state, stateTopUp); err != nil {
				return fmt.Errorf("failed to fund state account: %w", err)
			}
		}
		if err := runtime.AllocateSigned(ctx, accs.state, VaultStateSize, stateSigner); err != nil {
			return fmt.Errorf("failed to allocate state account: %w", err)
		}
		if err := runtime.AssignSigned(ctx, accs.state, p.id, stateSigner); err != nil {
			return fmt.Errorf("failed to assign state account: %w", err)
		}
	}

	if err := runtime.Transfer(ctx, accs.user, accs.vault, vaultRent); err != nil {
		return fmt.Errorf("failed to fund vault: %w", err)
	}

	state := VaultState{VaultBump: vaultBump, StateBump: stateBump}
	data, err := state.Bytes()
	if err != nil {
		return fmt.Errorf("failed to serialize vault state: %w", err)
	}
	if len(accs.state.Data) < len(data) {
		return fmt.Errorf("%w: state account has %d bytes", runtime.ErrAccountDataTooSmall, len(accs.state.Data))
	}
	copy(accs.state.Data, data)

	ctx.Log("Vault %s opened for %s", vaultPDA, accs.user.Key)
	return nil
}
