package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	vaultprogram "github.com/malbeclabs/solvault/smartcontract/programs/vault"
	"github.com/near/borsh-go"
)

type DepositInstructionConfig struct {
	Payer  solana.PublicKey
	Amount uint64
}

func (c *DepositInstructionConfig) Validate() error {
	if c.Payer.IsZero() {
		return fmt.Errorf("payer public key is required")
	}
	if c.Amount == 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	return nil
}

func BuildDepositInstruction(
	programID solana.PublicKey,
	config DepositInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator [8]byte
		Amount        uint64
	}{
		Discriminator: vaultprogram.DiscriminatorDeposit,
		Amount:        config.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts, err := instructionAccounts(programID, config.Payer, false)
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
