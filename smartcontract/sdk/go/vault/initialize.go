package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	vaultprogram "github.com/malbeclabs/solvault/smartcontract/programs/vault"
	"github.com/near/borsh-go"
)

type InitializeInstructionConfig struct {
	Payer solana.PublicKey
}

func (c *InitializeInstructionConfig) Validate() error {
	if c.Payer.IsZero() {
		return fmt.Errorf("payer public key is required")
	}
	return nil
}

func BuildInitializeInstruction(
	programID solana.PublicKey,
	config InitializeInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator [8]byte
	}{
		Discriminator: vaultprogram.DiscriminatorInitialize,
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
