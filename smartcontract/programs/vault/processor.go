package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

// Program is the custodial vault program. Each user owns one vault holding
// lamports, described by a VaultState record; only the user can move funds.
type Program struct {
	id solana.PublicKey
}

func New(programID solana.PublicKey) *Program {
	return &Program{id: programID}
}

func (p *Program) ID() solana.PublicKey {
	return p.id
}

// Process executes one vault instruction.
func (p *Program) Process(ctx runtime.Context, accounts []*runtime.AccountInfo, data []byte) error {
	ix, err := DecodeInstruction(data)
	if err != nil {
		return err
	}
	ctx.Log("Instruction: %s", ix.Kind)

	accs, err := parseAccounts(accounts)
	if err != nil {
		return err
	}

	switch ix.Kind {
	case InstructionInitialize:
		return p.initialize(ctx, accs)
	case InstructionDeposit:
		return p.deposit(ctx, accs, ix.Amount)
	case InstructionWithdraw:
		return p.withdraw(ctx, accs, ix.Amount)
	case InstructionClose:
		return p.close(ctx, accs)
	default:
		return fmt.Errorf("%w: %s", runtime.ErrInvalidInstructionData, ix.Kind)
	}
}
