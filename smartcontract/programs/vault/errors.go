package vault

import (
	"fmt"
)

// Error is a vault program error. Its code is what the ledger reports as a
// custom instruction error.
type Error struct {
	Code uint32
	Name string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

func (e *Error) ProgramErrorCode() uint32 {
	return e.Code
}

const errorCodeOffset = 6000

var (
	ErrAddressCollision    = &Error{Code: errorCodeOffset + 0, Name: "AddressCollision", Msg: "vault already exists"}
	ErrInvalidVaultAddress = &Error{Code: errorCodeOffset + 1, Name: "InvalidVaultAddress", Msg: "supplied account does not match derived vault address"}
	ErrInsufficientFunds   = &Error{Code: errorCodeOffset + 2, Name: "InsufficientFunds", Msg: "insufficient funds"}
	ErrInvalidAmount       = &Error{Code: errorCodeOffset + 3, Name: "InvalidAmount", Msg: "invalid amount"}
	ErrVaultNotOpen        = &Error{Code: errorCodeOffset + 4, Name: "VaultNotOpen", Msg: "vault state account is not initialized"}
)

var errorsByCode = map[uint32]*Error{
	ErrAddressCollision.Code:    ErrAddressCollision,
	ErrInvalidVaultAddress.Code: ErrInvalidVaultAddress,
	ErrInsufficientFunds.Code:   ErrInsufficientFunds,
	ErrInvalidAmount.Code:       ErrInvalidAmount,
	ErrVaultNotOpen.Code:        ErrVaultNotOpen,
}

// ErrorFromCode returns the program error registered under code.
func ErrorFromCode(code uint32) (*Error, bool) {
	e, ok := errorsByCode[code]
	return e, ok
}
