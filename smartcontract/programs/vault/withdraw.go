package vault

import (
	"fmt"

	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

func (p *Program) withdraw(ctx runtime.Context, accs *vaultAccounts, amount uint64) error {
	state, err := p.openVault(accs)
	if err != nil {
		return err
	}
	if amount == 0 {
		return fmt.Errorf("%w: withdrawal of zero lamports", ErrInvalidAmount)
	}
	if amount > accs.vault.Lamports {
		return fmt.Errorf("%w: vault holds %d lamports, withdrawal %d", ErrInsufficientFunds, accs.vault.Lamports, amount)
	}

	// The vault either empties or keeps its rent-exempt reserve.
	remainder := accs.vault.Lamports - amount
	if reserve := ctx.Rent().MinimumBalance(VaultSpace); remainder != 0 && remainder < reserve {
		return fmt.Errorf("%w: withdrawal leaves %d lamports, reserve is %d", ErrInsufficientFunds, remainder, reserve)
	}

	signer := VaultSigner(accs.state.Key, state.VaultBump)
	if err := runtime.TransferSigned(ctx, accs.vault, accs.user, amount, signer); err != nil {
		return fmt.Errorf("failed to transfer from vault: %w", err)
	}
	ctx.Log("Withdrew %d lamports", amount)
	return nil
}
