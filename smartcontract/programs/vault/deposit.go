package vault

import (
	"fmt"

	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

func (p *Program) deposit(ctx runtime.Context, accs *vaultAccounts, amount uint64) error {
	if _, err := p.openVault(accs); err != nil {
		return err
	}
	if amount == 0 {
		return fmt.Errorf("%w: deposit of zero lamports", ErrInvalidAmount)
	}

	reserve := ctx.Rent().MinimumBalance(accs.user.DataLen())
	if accs.user.Lamports < reserve || accs.user.Lamports-reserve < amount {
		return fmt.Errorf("%w: user has %d lamports, deposit %d needs reserve %d", ErrInsufficientFunds, accs.user.Lamports, amount, reserve)
	}

	if err := runtime.Transfer(ctx, accs.user, accs.vault, amount); err != nil {
		return fmt.Errorf("failed to transfer to vault: %w", err)
	}
	ctx.Log("Deposited %d lamports", amount)
	return nil
}
