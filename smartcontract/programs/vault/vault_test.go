package vault_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solvault/smartcontract/programs/vault"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
	vaultsdk "github.com/malbeclabs/solvault/smartcontract/sdk/go/vault"
	"github.com/malbeclabs/solvault/smartcontract/svm"
	"github.com/stretchr/testify/require"
)

func initializeIx(t *testing.T, programID solana.PublicKey, user solana.PublicKey) solana.Instruction {
	t.Helper()
	ix, err := vaultsdk.BuildInitializeInstruction(programID, vaultsdk.InitializeInstructionConfig{Payer: user})
	require.NoError(t, err)
	return ix
}

func depositIx(t *testing.T, programID solana.PublicKey, user solana.PublicKey, amount uint64) solana.Instruction {
	t.Helper()
	ix, err := vaultsdk.BuildDepositInstruction(programID, vaultsdk.DepositInstructionConfig{Payer: user, Amount: amount})
	require.NoError(t, err)
	return ix
}

func withdrawIx(t *testing.T, programID solana.PublicKey, user solana.PublicKey, amount uint64) solana.Instruction {
	t.Helper()
	ix, err := vaultsdk.BuildWithdrawInstruction(programID, vaultsdk.WithdrawInstructionConfig{Payer: user, Amount: amount})
	require.NoError(t, err)
	return ix
}

func closeIx(t *testing.T, programID solana.PublicKey, user solana.PublicKey) solana.Instruction {
	t.Helper()
	ix, err := vaultsdk.BuildCloseInstruction(programID, vaultsdk.CloseInstructionConfig{Payer: user})
	require.NoError(t, err)
	return ix
}

func TestProgram_Vault_Lifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.newUser(t)
	userPK := user.PublicKey()
	rent := f.ledger.Rent()
	stateRent := rent.MinimumBalance(vault.VaultStateSize)
	vaultRent := rent.MinimumBalance(vault.VaultSpace)

	addrs, err := vaultsdk.DeriveAddresses(f.programID, userPK)
	require.NoError(t, err)

	// Initialize
	res := f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)})
	require.NoError(t, res.Err)

	stateAcct, ok := f.ledger.GetAccount(addrs.State)
	require.True(t, ok)
	require.Equal(t, f.programID, stateAcct.Owner)
	require.Equal(t, stateRent, stateAcct.Lamports)
	require.Len(t, stateAcct.Data, vault.VaultStateSize)

	state, err := vault.DeserializeVaultState(stateAcct.Data)
	require.NoError(t, err)
	require.Equal(t, addrs.StateBump, state.StateBump)
	require.Equal(t, addrs.VaultBump, state.VaultBump)

	vaultAcct, ok := f.ledger.GetAccount(addrs.Vault)
	require.True(t, ok)
	require.Equal(t, solana.SystemProgramID, vaultAcct.Owner)
	require.Empty(t, vaultAcct.Data)
	require.Equal(t, vaultRent, vaultAcct.Lamports)
	require.Equal(t, userFunding-fee-stateRent-vaultRent, f.ledger.Balance(userPK))

	// Deposit
	res = f.send(t, user, []solana.Instruction{depositIx(t, f.programID, userPK, halfSOL)})
	require.NoError(t, res.Err)
	require.Equal(t, vaultRent+halfSOL, f.ledger.Balance(addrs.Vault))
	require.Equal(t, userFunding-2*fee-stateRent-vaultRent-halfSOL, f.ledger.Balance(userPK))

	// Withdraw
	res = f.send(t, user, []solana.Instruction{withdrawIx(t, f.programID, userPK, halfSOL)})
	require.NoError(t, res.Err)
	require.Equal(t, vaultRent, f.ledger.Balance(addrs.Vault))
	require.Equal(t, userFunding-3*fee-stateRent-vaultRent, f.ledger.Balance(userPK))

	// Close
	res = f.send(t, user, []solana.Instruction{closeIx(t, f.programID, userPK)})
	require.NoError(t, res.Err)

	_, ok = f.ledger.GetAccount(addrs.State)
	require.False(t, ok, "state record should be removed")
	require.Zero(t, f.ledger.Balance(addrs.Vault))
	require.Equal(t, userFunding-4*fee, f.ledger.Balance(userPK))
}

func TestProgram_Vault_Rederivation(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()

	wantState, wantStateBump, err := solana.FindProgramAddress([][]byte{[]byte("state"), user[:]}, programID)
	require.NoError(t, err)
	wantVault, wantVaultBump, err := solana.FindProgramAddress([][]byte{[]byte("vault"), wantState[:]}, programID)
	require.NoError(t, err)

	state, stateBump, vaultPDA, vaultBump, err := vault.DeriveVaultPDAs(programID, user)
	require.NoError(t, err)
	require.Equal(t, wantState, state)
	require.Equal(t, wantStateBump, stateBump)
	require.Equal(t, wantVault, vaultPDA)
	require.Equal(t, wantVaultBump, vaultBump)

	// The stored bumps reproduce the same addresses without a search.
	gotState, err := vault.StateSigner(user, stateBump).Address(programID)
	require.NoError(t, err)
	require.Equal(t, state, gotState)
	gotVault, err := vault.VaultSigner(state, vaultBump).Address(programID)
	require.NoError(t, err)
	require.Equal(t, vaultPDA, gotVault)

	// Every user gets distinct addresses.
	other, _, otherVault, _, err := vault.DeriveVaultPDAs(programID, solana.NewWallet().PublicKey())
	require.NoError(t, err)
	require.NotEqual(t, state, other)
	require.NotEqual(t, vaultPDA, otherVault)
}

func TestProgram_Vault_DepositAndWithdrawInOneTransaction(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.newUser(t)
	userPK := user.PublicKey()
	require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)}).Err)
	before := f.ledger.Balance(userPK)

	res := f.send(t, user, []solana.Instruction{
		depositIx(t, f.programID, userPK, halfSOL),
		withdrawIx(t, f.programID, userPK, halfSOL),
	})
	require.NoError(t, res.Err)
	require.Equal(t, before-fee, f.ledger.Balance(userPK))
}

func TestProgram_Vault_Errors(t *testing.T) {
	t.Parallel()

	t.Run("deposit before initialize", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)

		res := f.send(t, user, []solana.Instruction{depositIx(t, f.programID, user.PublicKey(), halfSOL)})
		require.ErrorIs(t, res.Err, vault.ErrVaultNotOpen)
		require.Equal(t, userFunding-fee, f.ledger.Balance(user.PublicKey()))
	})

	t.Run("initialize twice", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)

		require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, user.PublicKey())}).Err)
		f.ledger.AdvanceSlots(1)
		res := f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, user.PublicKey())})
		require.ErrorIs(t, res.Err, vault.ErrAddressCollision)
	})

	t.Run("zero amounts", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)
		userPK := user.PublicKey()
		addrs, err := vaultsdk.DeriveAddresses(f.programID, userPK)
		require.NoError(t, err)
		require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)}).Err)

		res := f.send(t, user, []solana.Instruction{f.rawInstruction(vault.InstructionDeposit, userPK, addrs.State, addrs.Vault, true, 0)})
		require.ErrorIs(t, res.Err, vault.ErrInvalidAmount)
		res = f.send(t, user, []solana.Instruction{f.rawInstruction(vault.InstructionWithdraw, userPK, addrs.State, addrs.Vault, true, 0)})
		require.ErrorIs(t, res.Err, vault.ErrInvalidAmount)
	})

	t.Run("withdraw more than the vault holds", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)
		userPK := user.PublicKey()
		require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)}).Err)
		require.NoError(t, f.send(t, user, []solana.Instruction{depositIx(t, f.programID, userPK, halfSOL)}).Err)

		addrs, err := vaultsdk.DeriveAddresses(f.programID, userPK)
		require.NoError(t, err)
		vaultBefore := f.ledger.Balance(addrs.Vault)
		userBefore := f.ledger.Balance(userPK)

		res := f.send(t, user, []solana.Instruction{withdrawIx(t, f.programID, userPK, solana.LAMPORTS_PER_SOL)})
		require.ErrorIs(t, res.Err, vault.ErrInsufficientFunds)
		require.Equal(t, vaultBefore, f.ledger.Balance(addrs.Vault))
		require.Equal(t, userBefore-fee, f.ledger.Balance(userPK))
	})

	t.Run("withdraw from an emptied vault", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)
		userPK := user.PublicKey()
		require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)}).Err)

		addrs, err := vaultsdk.DeriveAddresses(f.programID, userPK)
		require.NoError(t, err)
		f.ledger.SetAccount(addrs.Vault, svm.NewSystemAccount(halfSOL))

		res := f.send(t, user, []solana.Instruction{withdrawIx(t, f.programID, userPK, halfSOL)})
		require.NoError(t, res.Err)
		require.Zero(t, f.ledger.Balance(addrs.Vault))

		userBefore := f.ledger.Balance(userPK)
		res = f.send(t, user, []solana.Instruction{withdrawIx(t, f.programID, userPK, 1)})
		require.ErrorIs(t, res.Err, vault.ErrInsufficientFunds)
		require.Zero(t, f.ledger.Balance(addrs.Vault))
		require.Equal(t, userBefore-fee, f.ledger.Balance(userPK))
	})

	t.Run("withdraw leaving less than the reserve", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)
		userPK := user.PublicKey()
		require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)}).Err)
		require.NoError(t, f.send(t, user, []solana.Instruction{depositIx(t, f.programID, userPK, halfSOL)}).Err)

		res := f.send(t, user, []solana.Instruction{withdrawIx(t, f.programID, userPK, halfSOL+1)})
		require.ErrorIs(t, res.Err, vault.ErrInsufficientFunds)

		// Emptying the vault entirely is allowed.
		all := halfSOL + f.ledger.Rent().MinimumBalance(vault.VaultSpace)
		res = f.send(t, user, []solana.Instruction{withdrawIx(t, f.programID, userPK, all)})
		require.NoError(t, res.Err)
		addrs, err := vaultsdk.DeriveAddresses(f.programID, userPK)
		require.NoError(t, err)
		require.Zero(t, f.ledger.Balance(addrs.Vault))
	})

	t.Run("deposit more than the user holds", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)
		userPK := user.PublicKey()
		require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)}).Err)

		res := f.send(t, user, []solana.Instruction{depositIx(t, f.programID, userPK, userFunding)})
		require.ErrorIs(t, res.Err, vault.ErrInsufficientFunds)
	})

	t.Run("close twice", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)
		userPK := user.PublicKey()
		require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)}).Err)
		require.NoError(t, f.send(t, user, []solana.Instruction{closeIx(t, f.programID, userPK)}).Err)

		f.ledger.AdvanceSlots(1)
		res := f.send(t, user, []solana.Instruction{closeIx(t, f.programID, userPK)})
		require.ErrorIs(t, res.Err, vault.ErrVaultNotOpen)

		// A closed vault can be opened again.
		res = f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)})
		require.NoError(t, res.Err)
	})

	t.Run("another user's vault", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.newUser(t)
		thief := f.newUser(t)
		require.NoError(t, f.send(t, owner, []solana.Instruction{initializeIx(t, f.programID, owner.PublicKey())}).Err)
		require.NoError(t, f.send(t, owner, []solana.Instruction{depositIx(t, f.programID, owner.PublicKey(), halfSOL)}).Err)

		victim, err := vaultsdk.DeriveAddresses(f.programID, owner.PublicKey())
		require.NoError(t, err)
		before := f.ledger.Balance(victim.Vault)

		for _, kind := range []vault.InstructionKind{vault.InstructionWithdraw, vault.InstructionClose, vault.InstructionDeposit} {
			res := f.send(t, thief, []solana.Instruction{f.rawInstruction(kind, thief.PublicKey(), victim.State, victim.Vault, true, halfSOL)})
			require.ErrorIs(t, res.Err, vault.ErrInvalidVaultAddress, kind.String())
		}
		require.Equal(t, before, f.ledger.Balance(victim.Vault))
	})

	t.Run("vault of another state", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)
		other := f.newUser(t)
		require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, user.PublicKey())}).Err)
		require.NoError(t, f.send(t, other, []solana.Instruction{initializeIx(t, f.programID, other.PublicKey())}).Err)

		mine, err := vaultsdk.DeriveAddresses(f.programID, user.PublicKey())
		require.NoError(t, err)
		theirs, err := vaultsdk.DeriveAddresses(f.programID, other.PublicKey())
		require.NoError(t, err)

		res := f.send(t, user, []solana.Instruction{f.rawInstruction(vault.InstructionWithdraw, user.PublicKey(), mine.State, theirs.Vault, true, 1)})
		require.ErrorIs(t, res.Err, vault.ErrInvalidVaultAddress)
	})

	t.Run("missing user signature", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)
		relayer := f.newUser(t)
		userPK := user.PublicKey()
		require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)}).Err)
		require.NoError(t, f.send(t, user, []solana.Instruction{depositIx(t, f.programID, userPK, halfSOL)}).Err)
		addrs, err := vaultsdk.DeriveAddresses(f.programID, userPK)
		require.NoError(t, err)

		res := f.send(t, relayer, []solana.Instruction{f.rawInstruction(vault.InstructionWithdraw, userPK, addrs.State, addrs.Vault, false, halfSOL)})
		require.ErrorIs(t, res.Err, runtime.ErrMissingRequiredSignature)
	})

	t.Run("forged vault bump", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)
		userPK := user.PublicKey()
		require.NoError(t, f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)}).Err)
		require.NoError(t, f.send(t, user, []solana.Instruction{depositIx(t, f.programID, userPK, halfSOL)}).Err)

		addrs, err := vaultsdk.DeriveAddresses(f.programID, userPK)
		require.NoError(t, err)

		type forgery struct {
			name  string
			state vault.VaultState
		}
		forgeries := []forgery{
			{name: "off by one", state: vault.VaultState{VaultBump: addrs.VaultBump - 1, StateBump: addrs.StateBump}},
		}
		if addrs.VaultBump != addrs.StateBump {
			// The state bump must never authorize transfers out of the vault.
			forgeries = append(forgeries, forgery{
				name:  "state bump as vault bump",
				state: vault.VaultState{VaultBump: addrs.StateBump, StateBump: addrs.StateBump},
			})
		}

		for _, fg := range forgeries {
			acct, ok := f.ledger.GetAccount(addrs.State)
			require.True(t, ok)
			acct.Data, err = fg.state.Bytes()
			require.NoError(t, err)
			f.ledger.SetAccount(addrs.State, acct)

			vaultBefore := f.ledger.Balance(addrs.Vault)
			userBefore := f.ledger.Balance(userPK)

			res := f.send(t, user, []solana.Instruction{withdrawIx(t, f.programID, userPK, halfSOL)})
			require.ErrorIs(t, res.Err, vault.ErrInvalidVaultAddress, fg.name)
			require.Equal(t, vaultBefore, f.ledger.Balance(addrs.Vault), fg.name)
			require.Equal(t, userBefore-fee, f.ledger.Balance(userPK), fg.name)
		}
	})

	t.Run("unknown instruction", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.newUser(t)
		ix := &solana.GenericInstruction{
			ProgID:        f.programID,
			AccountValues: solana.AccountMetaSlice{solana.Meta(user.PublicKey()).WRITE().SIGNER()},
			DataBytes:     []byte{1, 2, 3, 4, 5, 6, 7, 8},
		}
		res := f.send(t, user, []solana.Instruction{ix})
		require.ErrorIs(t, res.Err, runtime.ErrInvalidInstructionData)
	})
}

func TestProgram_Vault_PrefundedStateAddress(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.newUser(t)
	userPK := user.PublicKey()
	addrs, err := vaultsdk.DeriveAddresses(f.programID, userPK)
	require.NoError(t, err)

	// Anyone can send lamports to the state address before the vault exists.
	require.NoError(t, f.ledger.Airdrop(addrs.State, 1000))

	res := f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)})
	require.NoError(t, res.Err)

	stateRent := f.ledger.Rent().MinimumBalance(vault.VaultStateSize)
	vaultRent := f.ledger.Rent().MinimumBalance(vault.VaultSpace)
	acct, ok := f.ledger.GetAccount(addrs.State)
	require.True(t, ok)
	require.Equal(t, f.programID, acct.Owner)
	require.Equal(t, stateRent, acct.Lamports)
	require.Equal(t, userFunding-fee-(stateRent-1000)-vaultRent, f.ledger.Balance(userPK))
}

func TestProgram_Vault_ForeignOwnedVaultAddress(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.newUser(t)
	userPK := user.PublicKey()
	addrs, err := vaultsdk.DeriveAddresses(f.programID, userPK)
	require.NoError(t, err)

	f.ledger.SetAccount(addrs.Vault, &svm.Account{
		Lamports: 1_000_000,
		Owner:    solana.NewWallet().PublicKey(),
	})

	res := f.send(t, user, []solana.Instruction{initializeIx(t, f.programID, userPK)})
	require.ErrorIs(t, res.Err, runtime.ErrInvalidAccountOwner)
}
