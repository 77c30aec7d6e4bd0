package runtime

import (
	"github.com/gagliardetto/solana-go"
)

// AccountInfo is a program's view of an account for the duration of a single
// instruction. Programs mutate Lamports, Data and Owner in place; the runtime
// verifies the changes when the instruction (or a cross-program invocation)
// returns.
type AccountInfo struct {
	Key        solana.PublicKey
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	Executable bool
	IsSigner   bool
	IsWritable bool
}

// DataLen returns the length of the account data.
func (a *AccountInfo) DataLen() uint64 {
	return uint64(len(a.Data))
}

// IsSystemOwned reports whether the account is owned by the system program.
func (a *AccountInfo) IsSystemOwned() bool {
	return a.Owner.Equals(solana.SystemProgramID)
}

// IsOwnedBy reports whether the account is owned by the given program.
func (a *AccountInfo) IsOwnedBy(programID solana.PublicKey) bool {
	return a.Owner.Equals(programID)
}

// IsUninitialized reports whether the account holds nothing: no lamports, no
// data, and the system program as owner.
func (a *AccountInfo) IsUninitialized() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.IsSystemOwned()
}
