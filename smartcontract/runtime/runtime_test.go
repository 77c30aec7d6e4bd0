package runtime_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
	"github.com/stretchr/testify/require"
)

func TestRuntime_Rent_MinimumBalance(t *testing.T) {
	t.Parallel()

	rent := runtime.DefaultRent()
	require.Equal(t, uint64(890_880), rent.MinimumBalance(0))
	require.Equal(t, uint64(960_480), rent.MinimumBalance(10))
	require.True(t, rent.IsExempt(890_880, 0))
	require.False(t, rent.IsExempt(890_879, 0))
}

func TestRuntime_SignerSeeds_Address(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()

	seeds := [][]byte{[]byte("state"), user[:]}
	want, bump, err := solana.FindProgramAddress(seeds, programID)
	require.NoError(t, err)

	got, err := runtime.NewSignerSeeds(bump, seeds...).Address(programID)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// A different program never produces the same address.
	other, err := runtime.NewSignerSeeds(bump, seeds...).Address(solana.NewWallet().PublicKey())
	if err == nil {
		require.NotEqual(t, want, other)
	} else {
		require.ErrorIs(t, err, runtime.ErrInvalidSeeds)
	}
}

func TestRuntime_SignerSeeds_BytesAppendsBump(t *testing.T) {
	t.Parallel()

	s := runtime.NewSignerSeeds(254, []byte("vault"), []byte{1, 2, 3})
	b := s.Bytes()
	require.Len(t, b, 3)
	require.Equal(t, []byte{254}, b[2])

	// The returned slices are copies.
	b[0][0] = 'x'
	require.Equal(t, []byte("vault"), s.Seeds[0])
}

type codedErr struct{ code uint32 }

func (e *codedErr) Error() string            { return "coded" }
func (e *codedErr) ProgramErrorCode() uint32 { return e.code }

func TestRuntime_CustomErrorCode(t *testing.T) {
	t.Parallel()

	code, ok := runtime.CustomErrorCode(&codedErr{code: 6002})
	require.True(t, ok)
	require.Equal(t, uint32(6002), code)

	_, ok = runtime.CustomErrorCode(runtime.ErrInvalidArgument)
	require.False(t, ok)
}

func TestRuntime_AccountInfo(t *testing.T) {
	t.Parallel()

	a := &runtime.AccountInfo{Key: solana.NewWallet().PublicKey(), Owner: solana.SystemProgramID}
	require.True(t, a.IsUninitialized())
	require.True(t, a.IsSystemOwned())

	a.Lamports = 1
	require.False(t, a.IsUninitialized())

	programID := solana.NewWallet().PublicKey()
	a.Owner = programID
	require.True(t, a.IsOwnedBy(programID))
	require.Equal(t, uint64(0), a.DataLen())
}
