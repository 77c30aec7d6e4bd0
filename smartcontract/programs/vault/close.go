package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

func (p *Program) close(ctx runtime.Context, accs *vaultAccounts) error {
	state, err := p.openVault(accs)
	if err != nil {
		return err
	}
	if !accs.state.IsWritable {
		return fmt.Errorf("%w: state %s", runtime.ErrAccountNotWritable, accs.state.Key)
	}

	balance := accs.vault.Lamports
	if balance > 0 {
		signer := VaultSigner(accs.state.Key, state.VaultBump)
		if err := runtime.TransferSigned(ctx, accs.vault, accs.user, balance, signer); err != nil {
			return fmt.Errorf("failed to drain vault: %w", err)
		}
	}

	refund := accs.state.Lamports
	accs.user.Lamports += refund
	accs.state.Lamports = 0
	accs.state.Data = accs.state.Data[:0]
	accs.state.Owner = solana.SystemProgramID

	ctx.Log("Vault closed, returned %d lamports and %d lamports of rent", balance, refund)
	return nil
}
