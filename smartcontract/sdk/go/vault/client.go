package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	vaultprogram "github.com/malbeclabs/solvault/smartcontract/programs/vault"
)

type Client struct {
	log      *slog.Logger
	rpc      RPCClient
	executor *executor
}

func New(log *slog.Logger, rpc RPCClient, signer *solana.PrivateKey, programID solana.PublicKey, opts ...ExecutorOption) *Client {
	return &Client{
		log:      log,
		rpc:      rpc,
		executor: NewExecutor(log, rpc, signer, programID, opts...),
	}
}

func (c *Client) ProgramID() solana.PublicKey {
	if c.executor == nil {
		return solana.PublicKey{}
	}
	return c.executor.programID
}

func (c *Client) Signer() *solana.PrivateKey {
	if c.executor == nil {
		return nil
	}
	return c.executor.signer
}

// Vault is a snapshot of one user's vault.
type Vault struct {
	Addresses
	Record        *vaultprogram.VaultState
	StateLamports uint64
	Balance       uint64

	// Reserve is the rent-exempt minimum the vault keeps while it holds
	// anything.
	Reserve uint64
}

// Open reports whether the vault's state record exists.
func (v *Vault) Open() bool {
	return v.Record != nil
}

// Deposited returns the lamports held above the reserve.
func (v *Vault) Deposited() uint64 {
	if v.Balance < v.Reserve {
		return 0
	}
	return v.Balance - v.Reserve
}

// VaultRecord is a state record found by scanning the program's accounts.
// Records do not store their user, so only the derived addresses are known.
type VaultRecord struct {
	State         solana.PublicKey
	Vault         solana.PublicKey
	Record        *vaultprogram.VaultState
	StateLamports uint64
	Balance       uint64
}

// GetVaultState fetches the VaultState record of user.
func (c *Client) GetVaultState(ctx context.Context, user solana.PublicKey) (*vaultprogram.VaultState, error) {
	addrs, err := DeriveAddresses(c.ProgramID(), user)
	if err != nil {
		return nil, err
	}
	state, _, err := c.getVaultState(ctx, addrs.State)
	return state, err
}

func (c *Client) getVaultState(ctx context.Context, pda solana.PublicKey) (*vaultprogram.VaultState, uint64, error) {
	account, err := c.rpc.GetAccountInfo(ctx, pda)
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, 0, ErrAccountNotFound
		}
		return nil, 0, fmt.Errorf("failed to get account data: %w", err)
	}
	if account.Value == nil || !account.Value.Owner.Equals(c.ProgramID()) {
		return nil, 0, ErrAccountNotFound
	}

	state, err := vaultprogram.DeserializeVaultState(account.Value.Data.GetBinary())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to deserialize vault state: %w", err)
	}
	return state, account.Value.Lamports, nil
}

// GetVaultBalance returns the lamports held in user's vault.
func (c *Client) GetVaultBalance(ctx context.Context, user solana.PublicKey) (uint64, error) {
	addrs, err := DeriveAddresses(c.ProgramID(), user)
	if err != nil {
		return 0, err
	}
	res, err := c.rpc.GetBalance(ctx, addrs.Vault, solanarpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get vault balance: %w", err)
	}
	return res.Value, nil
}

// GetVault fetches the addresses, record and balances of user's vault. A
// vault that was never created, or was closed, is returned with a nil Record.
func (c *Client) GetVault(ctx context.Context, user solana.PublicKey) (*Vault, error) {
	addrs, err := DeriveAddresses(c.ProgramID(), user)
	if err != nil {
		return nil, err
	}
	v := &Vault{Addresses: *addrs}

	state, lamports, err := c.getVaultState(ctx, addrs.State)
	switch {
	case errors.Is(err, ErrAccountNotFound):
	case err != nil:
		return nil, err
	default:
		v.Record = state
		v.StateLamports = lamports
	}

	v.Balance, err = c.GetVaultBalance(ctx, user)
	if err != nil {
		return nil, err
	}
	v.Reserve, err = c.rpc.GetMinimumBalanceForRentExemption(ctx, vaultprogram.VaultSpace, solanarpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get vault reserve: %w", err)
	}
	return v, nil
}

// ListVaults returns every open vault of the program, ordered as the RPC
// node returns them.
func (c *Client) ListVaults(ctx context.Context) ([]*VaultRecord, error) {
	programID := c.ProgramID()
	disc := vaultprogram.DiscriminatorVaultState
	accounts, err := c.rpc.GetProgramAccountsWithOpts(ctx, programID, &solanarpc.GetProgramAccountsOpts{
		Filters: []solanarpc.RPCFilter{
			{DataSize: vaultprogram.VaultStateSize},
			{Memcmp: &solanarpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58(disc[:])}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	records := make([]*VaultRecord, 0, len(accounts))
	for _, account := range accounts {
		if account == nil || account.Account == nil {
			continue
		}
		state, err := vaultprogram.DeserializeVaultState(account.Account.Data.GetBinary())
		if err != nil {
			c.log.Warn("vault: skipping undecodable state record", "address", account.Pubkey, "error", err)
			continue
		}
		vaultAddr, err := vaultprogram.VaultSigner(account.Pubkey, state.VaultBump).Address(programID)
		if err != nil {
			c.log.Warn("vault: skipping state record with invalid vault bump", "address", account.Pubkey, "error", err)
			continue
		}
		balance, err := c.rpc.GetBalance(ctx, vaultAddr, solanarpc.CommitmentFinalized)
		if err != nil {
			return nil, fmt.Errorf("failed to get vault balance: %w", err)
		}
		records = append(records, &VaultRecord{
			State:         account.Pubkey,
			Vault:         vaultAddr,
			Record:        state,
			StateLamports: account.Account.Lamports,
			Balance:       balance.Value,
		})
	}
	return records, nil
}

func (c *Client) payer() (solana.PublicKey, error) {
	signer := c.Signer()
	if signer == nil {
		return solana.PublicKey{}, ErrNoPrivateKey
	}
	return signer.PublicKey(), nil
}

// Initialize creates the signer's vault.
func (c *Client) Initialize(ctx context.Context) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	payer, err := c.payer()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	ix, err := BuildInitializeInstruction(c.ProgramID(), InitializeInstructionConfig{Payer: payer})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build initialize instruction: %w", err)
	}
	return c.executor.ExecuteTransaction(ctx, ix, nil)
}

// Deposit moves amount lamports from the signer into its vault.
func (c *Client) Deposit(ctx context.Context, amount uint64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	payer, err := c.payer()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	ix, err := BuildDepositInstruction(c.ProgramID(), DepositInstructionConfig{Payer: payer, Amount: amount})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build deposit instruction: %w", err)
	}
	return c.executor.ExecuteTransaction(ctx, ix, nil)
}

// Withdraw moves amount lamports from the signer's vault back to the signer.
func (c *Client) Withdraw(ctx context.Context, amount uint64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	payer, err := c.payer()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	ix, err := BuildWithdrawInstruction(c.ProgramID(), WithdrawInstructionConfig{Payer: payer, Amount: amount})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build withdraw instruction: %w", err)
	}
	return c.executor.ExecuteTransaction(ctx, ix, nil)
}

// Close empties the signer's vault and closes its state record.
func (c *Client) Close(ctx context.Context) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	payer, err := c.payer()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	ix, err := BuildCloseInstruction(c.ProgramID(), CloseInstructionConfig{Payer: payer})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build close instruction: %w", err)
	}
	return c.executor.ExecuteTransaction(ctx, ix, nil)
}
