package runtime

import (
	"errors"
)

// Builtin program errors shared by the runtime and every program.
var (
	ErrInvalidArgument          = errors.New("invalid program argument")
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrInvalidAccountData       = errors.New("invalid account data for instruction")
	ErrAccountDataTooSmall      = errors.New("account data too small for instruction")
	ErrIncorrectProgramID       = errors.New("incorrect program id for instruction")
	ErrMissingRequiredSignature = errors.New("missing required signature for instruction")
	ErrAccountNotWritable       = errors.New("account is not writable")
	ErrNotEnoughAccountKeys     = errors.New("insufficient account keys for instruction")
	ErrInvalidAccountOwner      = errors.New("invalid account owner")
	ErrInvalidSeeds             = errors.New("provided seeds do not result in a valid address")
	ErrPrivilegeEscalation      = errors.New("cross-program invocation with unauthorized signer or writable account")
	ErrMissingAccount           = errors.New("an account required by the instruction is missing")
	ErrUnsupportedProgramID     = errors.New("unsupported program id")
)

// ProgramError is implemented by program-defined errors that carry a custom
// error code.
type ProgramError interface {
	error
	ProgramErrorCode() uint32
}

// CustomErrorCode extracts the custom error code from err, if any error in
// its chain carries one.
func CustomErrorCode(err error) (uint32, bool) {
	var pe ProgramError
	if errors.As(err, &pe) {
		return pe.ProgramErrorCode(), true
	}
	return 0, false
}
