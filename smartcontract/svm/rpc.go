package svm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// The methods below mirror the subset of the Solana JSON-RPC client the vault
// SDK and CLI depend on, so the ledger can stand in for an RPC node.

func (l *Ledger) rpcContext() solanarpc.RPCContext {
	return solanarpc.RPCContext{Context: solanarpc.Context{Slot: l.slot}}
}

func (l *Ledger) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[account]
	if !ok {
		return nil, solanarpc.ErrNotFound
	}
	return &solanarpc.GetAccountInfoResult{
		RPCContext: l.rpcContext(),
		Value:      acct.rpcAccount(),
	}, nil
}

func (l *Ledger) GetBalance(ctx context.Context, account solana.PublicKey, _ solanarpc.CommitmentType) (*solanarpc.GetBalanceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	return &solanarpc.GetBalanceResult{
		RPCContext: l.rpcContext(),
		Value:      l.balanceLocked(account),
	}, nil
}

func (l *Ledger) GetLatestBlockhash(ctx context.Context, _ solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	return &solanarpc.GetLatestBlockhashResult{
		RPCContext: l.rpcContext(),
		Value: &solanarpc.LatestBlockhashResult{
			Blockhash:            l.blockhashes[len(l.blockhashes)-1],
			LastValidBlockHeight: l.slot + uint64(l.cfg.MaxBlockhashAge),
		},
	}, nil
}

func (l *Ledger) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, _ solanarpc.CommitmentType) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return l.cfg.Rent.MinimumBalance(dataSize), nil
}

func (l *Ledger) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return l.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{})
}

// SendTransactionWithOpts processes tx. Unless preflight is skipped, the
// transaction is simulated first and a failing simulation is returned as an
// error without charging a fee.
func (l *Ledger) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !opts.SkipPreflight {
		sim, err := l.processLocked(tx, false)
		if err != nil {
			return solana.Signature{}, err
		}
		if sim.Err != nil {
			return solana.Signature{}, fmt.Errorf("%w: %w", ErrPreflightFailure, sim.Err)
		}
	}

	res, err := l.processLocked(tx, true)
	if err != nil {
		return solana.Signature{}, err
	}
	return res.Signature, nil
}

// GetSignatureStatuses reports every landed transaction as finalized.
func (l *Ledger) GetSignatureStatuses(ctx context.Context, _ bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := &solanarpc.GetSignatureStatusesResult{
		RPCContext: l.rpcContext(),
		Value:      make([]*solanarpc.SignatureStatusesResult, len(sigs)),
	}
	for i, sig := range sigs {
		item := l.txs.Get(sig)
		if item == nil {
			continue
		}
		res := item.Value()
		out.Value[i] = &solanarpc.SignatureStatusesResult{
			Slot:               res.Slot,
			Err:                MetaError(res.Err),
			ConfirmationStatus: solanarpc.ConfirmationStatusFinalized,
		}
	}
	return out, nil
}

func (l *Ledger) GetTransaction(ctx context.Context, sig solana.Signature, _ *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	item := l.txs.Get(sig)
	l.mu.Unlock()
	if item == nil {
		return nil, solanarpc.ErrNotFound
	}
	res := item.Value()

	envelope, err := transactionEnvelope(res.Transaction)
	if err != nil {
		return nil, err
	}
	blockTime := solana.UnixTimeSeconds(res.BlockTime.Unix())
	return &solanarpc.GetTransactionResult{
		Slot:        res.Slot,
		BlockTime:   &blockTime,
		Transaction: envelope,
		Meta: &solanarpc.TransactionMeta{
			Err:          MetaError(res.Err),
			Fee:          res.Fee,
			PreBalances:  res.PreBalances,
			PostBalances: res.PostBalances,
			LogMessages:  res.Logs,
		},
	}, nil
}

// GetProgramAccountsWithOpts returns the accounts owned by programID that
// match every data size and memcmp filter, ordered by address.
func (l *Ledger) GetProgramAccountsWithOpts(ctx context.Context, programID solana.PublicKey, opts *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var filters []solanarpc.RPCFilter
	if opts != nil {
		filters = opts.Filters
	}

	out := solanarpc.GetProgramAccountsResult{}
	for pk, acct := range l.accounts {
		if !acct.Owner.Equals(programID) || !matchesFilters(acct.Data, filters) {
			continue
		}
		out = append(out, &solanarpc.KeyedAccount{
			Pubkey:  pk,
			Account: acct.rpcAccount(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Pubkey[:], out[j].Pubkey[:]) < 0
	})
	return out, nil
}

func matchesFilters(data []byte, filters []solanarpc.RPCFilter) bool {
	for _, f := range filters {
		if f.DataSize != 0 && uint64(len(data)) != f.DataSize {
			return false
		}
		if f.Memcmp != nil {
			off := f.Memcmp.Offset
			want := []byte(f.Memcmp.Bytes)
			if off > uint64(len(data)) || uint64(len(data))-off < uint64(len(want)) {
				return false
			}
			if !bytes.Equal(data[off:off+uint64(len(want))], want) {
				return false
			}
		}
	}
	return true
}

// transactionEnvelope wraps tx the way an RPC node returns it for base64
// encoding.
func transactionEnvelope(tx *solana.Transaction) (*solanarpc.TransactionResultEnvelope, error) {
	b64, err := tx.ToBase64()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}
	raw, err := json.Marshal([]string{b64, string(solana.EncodingBase64)})
	if err != nil {
		return nil, err
	}
	envelope := &solanarpc.TransactionResultEnvelope{}
	if err := envelope.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("failed to wrap transaction: %w", err)
	}
	return envelope, nil
}
