package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	vaultprogram "github.com/malbeclabs/solvault/smartcontract/programs/vault"
	"github.com/near/borsh-go"
)

type CloseInstructionConfig struct {
	Payer solana.PublicKey
}

func (c *CloseInstructionConfig) Validate() error {
	if c.Payer.IsZero() {
		return fmt.Errorf("payer public key is required")
	}
	return nil
}

// BuildCloseInstruction builds an instruction that empties the payer's vault
// and closes its state record, returning both balances to the payer.
func BuildCloseInstruction(
	programID solana.PublicKey,
	config CloseInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator [8]byte
	}{
		Discriminator: vaultprogram.DiscriminatorClose,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts, err := instructionAccounts(programID, config.Payer, true)
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
