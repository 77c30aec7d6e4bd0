package runtime

import (
	"github.com/gagliardetto/solana-go"
)

// Context is the environment the runtime exposes to a program while it
// processes one instruction.
type Context interface {
	// ProgramID is the ID of the currently executing program.
	ProgramID() solana.PublicKey

	// Rent returns the cluster rent parameters.
	Rent() Rent

	// Invoke executes an instruction of another program. Accounts referenced
	// by the instruction must be among the current instruction's accounts;
	// signer privileges are inherited from the caller, plus any program
	// derived address produced by signers and the caller's program ID.
	Invoke(ix solana.Instruction, signers ...SignerSeeds) error

	// Log records a program log line.
	Log(format string, args ...any)
}

// Program is an on-ledger program.
type Program interface {
	ID() solana.PublicKey
	Process(ctx Context, accounts []*AccountInfo, data []byte) error
}
