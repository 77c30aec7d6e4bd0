package runtime

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SignerSeeds authorizes a cross-program invocation on behalf of a program
// derived address. The runtime recomputes the address from the seeds, the
// bump and the calling program's ID, and treats that address as a signer for
// the duration of the invocation only.
type SignerSeeds struct {
	Seeds [][]byte
	Bump  uint8
}

func NewSignerSeeds(bump uint8, seeds ...[]byte) SignerSeeds {
	return SignerSeeds{
		Seeds: seeds,
		Bump:  bump,
	}
}

// Bytes returns the full seed sequence including the trailing bump byte.
func (s SignerSeeds) Bytes() [][]byte {
	out := make([][]byte, 0, len(s.Seeds)+1)
	for _, seed := range s.Seeds {
		out = append(out, append([]byte(nil), seed...))
	}
	return append(out, []byte{s.Bump})
}

// Address returns the program derived address these seeds produce for the
// given program.
func (s SignerSeeds) Address(programID solana.PublicKey) (solana.PublicKey, error) {
	addr, err := solana.CreateProgramAddress(s.Bytes(), programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidSeeds, err)
	}
	return addr, nil
}
