package vault

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

const discriminatorSize = 8

var (
	DiscriminatorVaultState = sha256First8("account:VaultState")

	DiscriminatorInitialize = sha256First8("global:initialize")
	DiscriminatorDeposit    = sha256First8("global:deposit")
	DiscriminatorWithdraw   = sha256First8("global:withdraw")
	DiscriminatorClose      = sha256First8("global:close")

	ErrInvalidDiscriminator = errors.New("invalid discriminator")
)

func sha256First8(s string) [8]byte {
	h := sha256.Sum256([]byte(s))
	var disc [8]byte
	copy(disc[:], h[:8])
	return disc
}

func validateDiscriminator(data []byte, expected [8]byte) error {
	if len(data) < discriminatorSize {
		return fmt.Errorf("%w: data too short", ErrInvalidDiscriminator)
	}
	var got [8]byte
	copy(got[:], data[:8])
	if got != expected {
		return fmt.Errorf("%w: got %x, want %x", ErrInvalidDiscriminator, got, expected)
	}
	return nil
}
