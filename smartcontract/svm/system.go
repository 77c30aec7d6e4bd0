package svm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

// systemProgram is the builtin that creates accounts, assigns their owner,
// allocates their data and moves lamports between them.
type systemProgram struct{}

func (p *systemProgram) ID() solana.PublicKey {
	return solana.SystemProgramID
}

func (p *systemProgram) Process(ctx runtime.Context, accounts []*runtime.AccountInfo, data []byte) error {
	metas := make([]*solana.AccountMeta, len(accounts))
	for i, a := range accounts {
		metas[i] = &solana.AccountMeta{PublicKey: a.Key, IsSigner: a.IsSigner, IsWritable: a.IsWritable}
	}
	inst, err := system.DecodeInstruction(metas, data)
	if err != nil {
		return fmt.Errorf("%w: %w", runtime.ErrInvalidInstructionData, err)
	}

	switch ix := inst.Impl.(type) {
	case *system.Transfer:
		if len(accounts) < 2 {
			return runtime.ErrNotEnoughAccountKeys
		}
		ctx.Log("Transfer %d lamports", *ix.Lamports)
		return transferLamports(accounts[0], accounts[1], *ix.Lamports)
	case *system.CreateAccount:
		if len(accounts) < 2 {
			return runtime.ErrNotEnoughAccountKeys
		}
		return createAccount(accounts[0], accounts[1], *ix.Lamports, *ix.Space, *ix.Owner)
	case *system.Allocate:
		if len(accounts) < 1 {
			return runtime.ErrNotEnoughAccountKeys
		}
		return allocate(accounts[0], *ix.Space)
	case *system.Assign:
		if len(accounts) < 1 {
			return runtime.ErrNotEnoughAccountKeys
		}
		return assign(accounts[0], *ix.Owner)
	default:
		return fmt.Errorf("%w: unsupported system instruction %s", runtime.ErrInvalidInstructionData, system.InstructionIDToName(inst.TypeID.Uint32()))
	}
}

func transferLamports(from, to *runtime.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return fmt.Errorf("%w: transfer from %s", runtime.ErrMissingRequiredSignature, from.Key)
	}
	if len(from.Data) > 0 {
		return fmt.Errorf("%w: transfer from %s must not carry data", runtime.ErrInvalidArgument, from.Key)
	}
	if from.Lamports < lamports {
		return fmt.Errorf("%w: from %s has %d, needs %d", ErrSystemResultWithNegativeLamports, from.Key, from.Lamports, lamports)
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}

func createAccount(from, to *runtime.AccountInfo, lamports, space uint64, owner solana.PublicKey) error {
	if !to.IsSigner {
		return fmt.Errorf("%w: create account %s", runtime.ErrMissingRequiredSignature, to.Key)
	}
	if to.Lamports > 0 {
		return fmt.Errorf("%w: %s already holds %d lamports", ErrSystemAccountAlreadyInUse, to.Key, to.Lamports)
	}
	if err := allocate(to, space); err != nil {
		return err
	}
	if err := assign(to, owner); err != nil {
		return err
	}
	return transferLamports(from, to, lamports)
}

func allocate(acct *runtime.AccountInfo, space uint64) error {
	if !acct.IsSigner {
		return fmt.Errorf("%w: allocate %s", runtime.ErrMissingRequiredSignature, acct.Key)
	}
	if len(acct.Data) > 0 || !acct.IsSystemOwned() {
		return fmt.Errorf("%w: allocate %s", ErrSystemAccountAlreadyInUse, acct.Key)
	}
	if space > MaxPermittedDataLength {
		return fmt.Errorf("%w: %d bytes", ErrSystemInvalidAccountDataLength, space)
	}
	acct.Data = make([]byte, space)
	return nil
}

func assign(acct *runtime.AccountInfo, owner solana.PublicKey) error {
	if acct.Owner.Equals(owner) {
		return nil
	}
	if !acct.IsSigner {
		return fmt.Errorf("%w: assign %s", runtime.ErrMissingRequiredSignature, acct.Key)
	}
	acct.Owner = owner
	return nil
}
