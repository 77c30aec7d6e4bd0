package runtime

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// Transfer moves lamports between two accounts through the system program.
// from must be a signer of the current instruction.
func Transfer(ctx Context, from, to *AccountInfo, lamports uint64) error {
	return TransferSigned(ctx, from, to, lamports)
}

// TransferSigned moves lamports out of a program derived address. The
// runtime grants from signer privilege only if signers derive its address.
func TransferSigned(ctx Context, from, to *AccountInfo, lamports uint64, signers ...SignerSeeds) error {
	ix, err := system.NewTransferInstruction(lamports, from.Key, to.Key).ValidateAndBuild()
	if err != nil {
		return fmt.Errorf("failed to build transfer instruction: %w", err)
	}
	return ctx.Invoke(ix, signers...)
}

// CreateAccountSigned funds, allocates and assigns a new program derived
// account in one system call.
func CreateAccountSigned(ctx Context, payer, target *AccountInfo, lamports, space uint64, owner solana.PublicKey, signers ...SignerSeeds) error {
	ix, err := system.NewCreateAccountInstruction(lamports, space, owner, payer.Key, target.Key).ValidateAndBuild()
	if err != nil {
		return fmt.Errorf("failed to build create account instruction: %w", err)
	}
	return ctx.Invoke(ix, signers...)
}

// AllocateSigned sets the data length of a system-owned account.
func AllocateSigned(ctx Context, target *AccountInfo, space uint64, signers ...SignerSeeds) error {
	ix, err := system.NewAllocateInstruction(space, target.Key).ValidateAndBuild()
	if err != nil {
		return fmt.Errorf("failed to build allocate instruction: %w", err)
	}
	return ctx.Invoke(ix, signers...)
}

// AssignSigned changes the owner of a system-owned account.
func AssignSigned(ctx Context, target *AccountInfo, owner solana.PublicKey, signers ...SignerSeeds) error {
	ix, err := system.NewAssignInstruction(owner, target.Key).ValidateAndBuild()
	if err != nil {
		return fmt.Errorf("failed to build assign instruction: %w", err)
	}
	return ctx.Invoke(ix, signers...)
}
