package vault

import (
	"bytes"
	"fmt"
	"io"

	bin "github.com/gagliardetto/binary"
)

// VaultState is the per-user record describing how the user's state and vault
// addresses were derived. Both bumps are fixed at creation.
type VaultState struct {
	VaultBump uint8 // 1 byte
	StateBump uint8 // 1 byte
}

func (s *VaultState) Serialize(w io.Writer) error {
	enc := bin.NewBorshEncoder(w)
	if err := enc.Encode(DiscriminatorVaultState); err != nil {
		return err
	}
	if err := enc.Encode(s.VaultBump); err != nil {
		return err
	}
	if err := enc.Encode(s.StateBump); err != nil {
		return err
	}
	return nil
}

func (s *VaultState) Deserialize(data []byte) error {
	if err := validateDiscriminator(data, DiscriminatorVaultState); err != nil {
		return err
	}
	dec := bin.NewBorshDecoder(data[discriminatorSize:])
	if err := dec.Decode(&s.VaultBump); err != nil {
		return err
	}
	if err := dec.Decode(&s.StateBump); err != nil {
		return err
	}
	return nil
}

// Bytes returns the persisted layout of the record.
func (s *VaultState) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(VaultStateSize)
	if err := s.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeVaultState decodes a VaultState record, checking its size and
// discriminator first.
func DeserializeVaultState(data []byte) (*VaultState, error) {
	if len(data) < VaultStateSize {
		return nil, fmt.Errorf("account data too short: %d bytes", len(data))
	}
	var state VaultState
	if err := state.Deserialize(data); err != nil {
		return nil, fmt.Errorf("failed to deserialize vault state: %w", err)
	}
	return &state, nil
}
