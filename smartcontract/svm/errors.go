package svm

import (
	"errors"
	"fmt"

	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

// Transaction-level errors. A transaction rejected with one of the sanitize
// or fee errors never lands and is not charged.
var (
	ErrSanitizeFailure          = errors.New("transaction failed to sanitize accounts offsets correctly")
	ErrSignatureFailure         = errors.New("transaction did not pass signature verification")
	ErrBlockhashNotFound        = errors.New("blockhash not found")
	ErrAlreadyProcessed         = errors.New("this transaction has already been processed")
	ErrAccountNotFound          = errors.New("attempt to debit an account but found no record of a prior credit")
	ErrInsufficientFundsForFee  = errors.New("insufficient funds for fee")
	ErrInsufficientFundsForRent = errors.New("transaction results in an account with insufficient funds for rent")
	ErrPreflightFailure         = errors.New("transaction simulation failed")
)

// Instruction-level errors raised while verifying what a program did to its
// accounts.
var (
	ErrReadonlyLamportChange       = errors.New("instruction changed the balance of a read-only account")
	ErrReadonlyDataModified        = errors.New("instruction modified data of a read-only account")
	ErrExternalAccountLamportSpend = errors.New("instruction spent from the balance of an account it does not own")
	ErrExternalAccountDataModified = errors.New("instruction modified data of an account it does not own")
	ErrModifiedProgramID           = errors.New("instruction illegally modified the program id of an account")
	ErrExecutableModified          = errors.New("instruction changed executable bit of an account")
	ErrUnbalancedInstruction       = errors.New("sum of account balances before and after instruction do not match")
	ErrCallDepth                   = errors.New("cross-program invocation call depth too deep")
	ErrReentrancyNotAllowed        = errors.New("cross-program invocation reentrancy not allowed for this instruction")
)

// InstructionError is the error of a transaction that failed while executing
// one of its instructions.
type InstructionError struct {
	Index int
	Err   error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("error processing instruction %d: %v", e.Index, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}

// RentStateError reports the account that was left neither empty nor rent
// exempt by a transaction.
type RentStateError struct {
	AccountIndex int
}

func (e *RentStateError) Error() string {
	return fmt.Sprintf("%v: account index %d", ErrInsufficientFundsForRent, e.AccountIndex)
}

func (e *RentStateError) Unwrap() error {
	return ErrInsufficientFundsForRent
}

// SystemError is a custom error of the system program.
type SystemError struct {
	Code uint32
	Msg  string
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("system program error %d: %s", e.Code, e.Msg)
}

func (e *SystemError) ProgramErrorCode() uint32 {
	return e.Code
}

var (
	ErrSystemAccountAlreadyInUse        = &SystemError{Code: 0, Msg: "an account with the same address already exists"}
	ErrSystemResultWithNegativeLamports = &SystemError{Code: 1, Msg: "account does not have enough SOL to perform the operation"}
	ErrSystemInvalidAccountDataLength   = &SystemError{Code: 3, Msg: "cannot allocate account data of this length"}
)

var builtinErrorNames = []struct {
	err  error
	name string
}{
	{runtime.ErrInvalidArgument, "InvalidArgument"},
	{runtime.ErrInvalidInstructionData, "InvalidInstructionData"},
	{runtime.ErrInvalidAccountData, "InvalidAccountData"},
	{runtime.ErrAccountDataTooSmall, "AccountDataTooSmall"},
	{runtime.ErrIncorrectProgramID, "IncorrectProgramId"},
	{runtime.ErrMissingRequiredSignature, "MissingRequiredSignature"},
	{runtime.ErrAccountNotWritable, "AccountNotWritable"},
	{runtime.ErrNotEnoughAccountKeys, "NotEnoughAccountKeys"},
	{runtime.ErrInvalidAccountOwner, "InvalidAccountOwner"},
	{runtime.ErrInvalidSeeds, "InvalidSeeds"},
	{runtime.ErrPrivilegeEscalation, "PrivilegeEscalation"},
	{runtime.ErrMissingAccount, "MissingAccount"},
	{runtime.ErrUnsupportedProgramID, "UnsupportedProgramId"},
	{ErrReadonlyLamportChange, "ReadonlyLamportChange"},
	{ErrReadonlyDataModified, "ReadonlyDataModified"},
	{ErrExternalAccountLamportSpend, "ExternalAccountLamportSpend"},
	{ErrExternalAccountDataModified, "ExternalAccountDataModified"},
	{ErrModifiedProgramID, "ModifiedProgramId"},
	{ErrExecutableModified, "ExecutableModified"},
	{ErrUnbalancedInstruction, "UnbalancedInstruction"},
	{ErrCallDepth, "CallDepth"},
	{ErrReentrancyNotAllowed, "ReentrancyNotAllowed"},
}

// MetaError renders a transaction error in the shape RPC nodes report it in
// transaction metadata and signature statuses.
func MetaError(err error) any {
	if err == nil {
		return nil
	}

	var ie *InstructionError
	if errors.As(err, &ie) {
		if code, ok := runtime.CustomErrorCode(ie.Err); ok {
			return map[string]any{
				"InstructionError": []any{ie.Index, map[string]any{"Custom": code}},
			}
		}
		return map[string]any{
			"InstructionError": []any{ie.Index, builtinErrorName(ie.Err)},
		}
	}

	var re *RentStateError
	if errors.As(err, &re) {
		return map[string]any{
			"InsufficientFundsForRent": map[string]any{"account_index": re.AccountIndex},
		}
	}

	return err.Error()
}

func builtinErrorName(err error) string {
	for _, b := range builtinErrorNames {
		if errors.Is(err, b.err) {
			return b.name
		}
	}
	return err.Error()
}
