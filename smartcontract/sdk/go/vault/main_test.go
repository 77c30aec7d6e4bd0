package vault_test

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	vaultprogram "github.com/malbeclabs/solvault/smartcontract/programs/vault"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
	"github.com/malbeclabs/solvault/smartcontract/sdk/go/vault"
	"github.com/malbeclabs/solvault/smartcontract/svm"
	"github.com/stretchr/testify/require"
)

var (
	log *slog.Logger
)

// TestMain sets up the test environment with a global logger.
func TestMain(m *testing.M) {
	flag.Parse()
	verbose := false
	if vFlag := flag.Lookup("test.v"); vFlag != nil && vFlag.Value.String() == "true" {
		verbose = true
	}
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	log = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.RFC3339,
		AddSource:  true,
	}))

	os.Exit(m.Run())
}

type mockRPCClient struct {
	vault.RPCClient

	GetLatestBlockhashFunc      func(context.Context, solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error)
	SendTransactionWithOptsFunc func(context.Context, *solana.Transaction, solanarpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatusesFunc    func(context.Context, bool, ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error)
	GetTransactionFunc          func(context.Context, solana.Signature, *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error)
	GetAccountInfoFunc          func(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error)
	GetBalanceFunc              func(context.Context, solana.PublicKey, solanarpc.CommitmentType) (*solanarpc.GetBalanceResult, error)
	GetMinimumBalanceFunc       func(context.Context, uint64, solanarpc.CommitmentType) (uint64, error)
	GetProgramAccountsFunc      func(context.Context, solana.PublicKey, *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error)
}

func (m *mockRPCClient) GetLatestBlockhash(ctx context.Context, ct solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	return m.GetLatestBlockhashFunc(ctx, ct)
}

func (m *mockRPCClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	return m.SendTransactionWithOptsFunc(ctx, tx, opts)
}

func (m *mockRPCClient) GetSignatureStatuses(ctx context.Context, search bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	return m.GetSignatureStatusesFunc(ctx, search, sigs...)
}

func (m *mockRPCClient) GetTransaction(ctx context.Context, sig solana.Signature, opts *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error) {
	return m.GetTransactionFunc(ctx, sig, opts)
}

func (m *mockRPCClient) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	return m.GetAccountInfoFunc(ctx, account)
}

func (m *mockRPCClient) GetBalance(ctx context.Context, account solana.PublicKey, ct solanarpc.CommitmentType) (*solanarpc.GetBalanceResult, error) {
	return m.GetBalanceFunc(ctx, account, ct)
}

func (m *mockRPCClient) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, ct solanarpc.CommitmentType) (uint64, error) {
	return m.GetMinimumBalanceFunc(ctx, dataSize, ct)
}

func (m *mockRPCClient) GetProgramAccountsWithOpts(ctx context.Context, programID solana.PublicKey, opts *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error) {
	return m.GetProgramAccountsFunc(ctx, programID, opts)
}

var testBlockhash = solana.MustHashFromBase58("5NzX7jrPWeTkGsDnVnszdEa7T3Yyr3nSgyc78z3CwjWQ")

// newTestLedger returns an in-memory ledger with the vault program deployed.
func newTestLedger(t *testing.T) (*svm.Ledger, solana.PublicKey) {
	t.Helper()
	programID := solana.NewWallet().PublicKey()
	l, err := svm.New(&svm.Config{
		Logger:   log,
		Clock:    clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		Programs: []runtime.Program{vaultprogram.New(programID)},
	})
	require.NoError(t, err)
	return l, programID
}
