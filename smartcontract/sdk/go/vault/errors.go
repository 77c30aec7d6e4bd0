package vault

import (
	"encoding/json"
	"errors"
	"fmt"

	vaultprogram "github.com/malbeclabs/solvault/smartcontract/programs/vault"
)

var (
	// ErrAccountNotFound is returned when the vault state record does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionFailed is returned when a transaction landed but failed.
	ErrTransactionFailed = errors.New("transaction failed")
)

// DecodeTransactionError converts the error of a landed transaction, as
// reported in its metadata, into a Go error. Custom codes of the vault
// program unwrap to the program's error values.
func DecodeTransactionError(metaErr any) error {
	if metaErr == nil {
		return nil
	}
	raw, err := json.Marshal(metaErr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, metaErr)
	}

	var parsed struct {
		InstructionError []json.RawMessage `json:"InstructionError"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.InstructionError) != 2 {
		return fmt.Errorf("%w: %s", ErrTransactionFailed, raw)
	}

	var index int
	if err := json.Unmarshal(parsed.InstructionError[0], &index); err != nil {
		return fmt.Errorf("%w: %s", ErrTransactionFailed, raw)
	}

	var custom struct {
		Custom *uint32 `json:"Custom"`
	}
	if err := json.Unmarshal(parsed.InstructionError[1], &custom); err != nil || custom.Custom == nil {
		return fmt.Errorf("%w: instruction %d: %s", ErrTransactionFailed, index, parsed.InstructionError[1])
	}
	if perr, ok := vaultprogram.ErrorFromCode(*custom.Custom); ok {
		return fmt.Errorf("%w: instruction %d: %w", ErrTransactionFailed, index, perr)
	}
	return fmt.Errorf("%w: instruction %d: custom program error %d", ErrTransactionFailed, index, *custom.Custom)
}
