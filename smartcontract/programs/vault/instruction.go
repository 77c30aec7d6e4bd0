package vault

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

type InstructionKind uint8

const (
	InstructionInitialize InstructionKind = iota + 1
	InstructionDeposit
	InstructionWithdraw
	InstructionClose
)

func (k InstructionKind) String() string {
	switch k {
	case InstructionInitialize:
		return "Initialize"
	case InstructionDeposit:
		return "Deposit"
	case InstructionWithdraw:
		return "Withdraw"
	case InstructionClose:
		return "Close"
	default:
		return fmt.Sprintf("InstructionKind(%d)", uint8(k))
	}
}

// Discriminator returns the 8-byte prefix identifying the instruction.
func (k InstructionKind) Discriminator() ([8]byte, bool) {
	switch k {
	case InstructionInitialize:
		return DiscriminatorInitialize, true
	case InstructionDeposit:
		return DiscriminatorDeposit, true
	case InstructionWithdraw:
		return DiscriminatorWithdraw, true
	case InstructionClose:
		return DiscriminatorClose, true
	}
	return [8]byte{}, false
}

// HasAmount reports whether the instruction carries a u64 amount argument.
func (k InstructionKind) HasAmount() bool {
	return k == InstructionDeposit || k == InstructionWithdraw
}

type Instruction struct {
	Kind   InstructionKind
	Amount uint64
}

// DecodeInstruction parses instruction data: an 8-byte discriminator followed
// by the Borsh-encoded arguments.
func DecodeInstruction(data []byte) (*Instruction, error) {
	if len(data) < discriminatorSize {
		return nil, fmt.Errorf("%w: data too short: %d bytes", runtime.ErrInvalidInstructionData, len(data))
	}
	var disc [8]byte
	copy(disc[:], data[:discriminatorSize])

	ix := &Instruction{}
	switch disc {
	case DiscriminatorInitialize:
		ix.Kind = InstructionInitialize
	case DiscriminatorDeposit:
		ix.Kind = InstructionDeposit
	case DiscriminatorWithdraw:
		ix.Kind = InstructionWithdraw
	case DiscriminatorClose:
		ix.Kind = InstructionClose
	default:
		return nil, fmt.Errorf("%w: unknown discriminator %x", runtime.ErrInvalidInstructionData, disc)
	}

	if ix.Kind.HasAmount() {
		dec := bin.NewBorshDecoder(data[discriminatorSize:])
		if err := dec.Decode(&ix.Amount); err != nil {
			return nil, fmt.Errorf("%w: failed to decode amount: %w", runtime.ErrInvalidInstructionData, err)
		}
	}
	return ix, nil
}
