package svm

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jellydator/ttlcache/v3"
	"github.com/mr-tron/base58"
)

// TransactionResult describes a transaction that landed on the ledger, or
// the outcome of simulating one.
type TransactionResult struct {
	Signature    solana.Signature
	Slot         uint64
	BlockTime    time.Time
	Fee          uint64
	Err          error
	Logs         []string
	PreBalances  []uint64
	PostBalances []uint64
	Transaction  *solana.Transaction
}

// ProcessTransaction executes tx and commits its effects. The returned error
// is non-nil only when the transaction is rejected outright; a transaction
// that lands but fails reports its error in TransactionResult.Err, is
// charged its fee, and leaves every other account untouched.
func (l *Ledger) ProcessTransaction(tx *solana.Transaction) (*TransactionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processLocked(tx, true)
}

// SimulateTransaction executes tx without committing anything.
func (l *Ledger) SimulateTransaction(tx *solana.Transaction) (*TransactionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processLocked(tx, false)
}

func (l *Ledger) processLocked(tx *solana.Transaction, commit bool) (*TransactionResult, error) {
	sig, err := l.sanitizeLocked(tx)
	if err != nil {
		if commit {
			MetricTransactions.WithLabelValues(ResultRejected).Inc()
		}
		return nil, err
	}

	metas, err := tx.Message.AccountMetaList()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSanitizeFailure, err)
	}
	keys := make([]solana.PublicKey, len(metas))
	for i, m := range metas {
		keys[i] = m.PublicKey
	}

	payer := keys[0]
	fee := l.cfg.LamportsPerSignature * uint64(len(tx.Signatures))
	if err := l.checkFeePayerLocked(payer, fee); err != nil {
		if commit {
			MetricTransactions.WithLabelValues(ResultRejected).Inc()
		}
		return nil, err
	}

	preBalances := make([]uint64, len(keys))
	working := make(map[solana.PublicKey]*Account, len(keys))
	for i, k := range keys {
		preBalances[i] = l.balanceLocked(k)
		if _, ok := working[k]; !ok {
			working[k] = l.loadLocked(k)
		}
	}
	working[payer].Lamports -= fee

	pre := make(map[solana.PublicKey]*Account, len(working))
	for k, acct := range working {
		pre[k] = acct.Clone()
	}

	tc := &txContext{
		ledger:  l,
		working: working,
	}
	execErr := tc.executeInstructions(tx, metas, commit)
	if execErr == nil {
		execErr = l.checkRentState(metas, pre, working)
	}

	res := &TransactionResult{
		Signature:    sig,
		Slot:         l.slot,
		BlockTime:    l.cfg.Clock.Now(),
		Fee:          fee,
		Err:          execErr,
		Logs:         tc.logs,
		PreBalances:  preBalances,
		PostBalances: make([]uint64, len(keys)),
		Transaction:  tx,
	}

	if execErr != nil {
		for i, k := range keys {
			res.PostBalances[i] = preBalances[i]
			if k.Equals(payer) {
				res.PostBalances[i] -= fee
			}
		}
	} else {
		for i, k := range keys {
			res.PostBalances[i] = working[k].Lamports
		}
	}

	if !commit {
		return res, nil
	}

	if execErr != nil {
		charged := l.loadLocked(payer)
		charged.Lamports -= fee
		l.storeLocked(payer, charged)
		MetricTransactions.WithLabelValues(ResultFailed).Inc()
	} else {
		for _, m := range metas {
			if m.IsWritable {
				l.storeLocked(m.PublicKey, working[m.PublicKey])
			}
		}
		MetricTransactions.WithLabelValues(ResultSuccess).Inc()
	}
	MetricFees.Add(float64(fee))

	l.txs.Set(sig, res, ttlcache.DefaultTTL)
	l.log.Debug("svm: transaction processed", "signature", sig, "slot", res.Slot, "fee", fee, "error", execErr)
	l.advanceSlotLocked()

	return res, nil
}

func (l *Ledger) sanitizeLocked(tx *solana.Transaction) (solana.Signature, error) {
	if tx == nil {
		return solana.Signature{}, fmt.Errorf("%w: nil transaction", ErrSanitizeFailure)
	}
	if tx.Message.IsVersioned() && tx.Message.NumLookups() > 0 {
		return solana.Signature{}, fmt.Errorf("%w: address table lookups are not supported", ErrSanitizeFailure)
	}
	if len(tx.Message.AccountKeys) == 0 || tx.Message.Header.NumRequiredSignatures == 0 {
		return solana.Signature{}, fmt.Errorf("%w: transaction has no fee payer", ErrSanitizeFailure)
	}
	if len(tx.Signatures) != int(tx.Message.Header.NumRequiredSignatures) {
		return solana.Signature{}, fmt.Errorf("%w: got %d signatures, want %d", ErrSanitizeFailure, len(tx.Signatures), tx.Message.Header.NumRequiredSignatures)
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", ErrSignatureFailure, err)
	}

	sig := tx.Signatures[0]
	if l.txs.Has(sig) {
		return solana.Signature{}, fmt.Errorf("%w: %s", ErrAlreadyProcessed, sig)
	}
	if !l.isRecentBlockhashLocked(tx.Message.RecentBlockhash) {
		return solana.Signature{}, fmt.Errorf("%w: %s", ErrBlockhashNotFound, tx.Message.RecentBlockhash)
	}
	return sig, nil
}

// checkFeePayerLocked verifies the fee payer can pay the fee and stay either
// empty or rent exempt.
func (l *Ledger) checkFeePayerLocked(payer solana.PublicKey, fee uint64) error {
	acct, ok := l.accounts[payer]
	if !ok || acct.Lamports == 0 {
		return fmt.Errorf("%w: fee payer %s", ErrAccountNotFound, payer)
	}
	if acct.Lamports < fee {
		return fmt.Errorf("%w: fee payer %s has %d lamports, fee is %d", ErrInsufficientFundsForFee, payer, acct.Lamports, fee)
	}
	remaining := acct.Lamports - fee
	if remaining != 0 && !l.cfg.Rent.IsExempt(remaining, uint64(len(acct.Data))) {
		return fmt.Errorf("%w: fee payer %s would be left with %d lamports", ErrInsufficientFundsForFee, payer, remaining)
	}
	return nil
}

// checkRentState enforces that every writable account ends the transaction
// empty or rent exempt. An account that was already below the exempt
// minimum may stay there only if its size is unchanged and its balance did
// not grow.
func (l *Ledger) checkRentState(metas solana.AccountMetaSlice, pre, post map[solana.PublicKey]*Account) error {
	rent := l.cfg.Rent
	for i, m := range metas {
		if !m.IsWritable {
			continue
		}
		after := post[m.PublicKey]
		if after.Lamports == 0 || rent.IsExempt(after.Lamports, uint64(len(after.Data))) {
			continue
		}
		before := pre[m.PublicKey]
		wasRentPaying := before.Lamports > 0 && !rent.IsExempt(before.Lamports, uint64(len(before.Data)))
		if wasRentPaying && len(before.Data) == len(after.Data) && after.Lamports <= before.Lamports {
			continue
		}
		return &RentStateError{AccountIndex: i}
	}
	return nil
}

func (tc *txContext) executeInstructions(tx *solana.Transaction, metas solana.AccountMetaSlice, commit bool) error {
	for i, ci := range tx.Message.Instructions {
		programID, err := tx.Message.ResolveProgramIDIndex(ci.ProgramIDIndex)
		if err != nil {
			return &InstructionError{Index: i, Err: fmt.Errorf("%w: %w", ErrSanitizeFailure, err)}
		}

		accounts := make([]*solana.AccountMeta, 0, len(ci.Accounts))
		for _, idx := range ci.Accounts {
			if int(idx) >= len(metas) {
				return &InstructionError{Index: i, Err: fmt.Errorf("%w: account index %d out of range", ErrSanitizeFailure, idx)}
			}
			m := metas[idx]
			accounts = append(accounts, &solana.AccountMeta{
				PublicKey:  m.PublicKey,
				IsSigner:   m.IsSigner,
				IsWritable: m.IsWritable,
			})
		}

		tc.ledger.log.Debug("svm: executing instruction", "index", i, "programID", programID, "data", base58.Encode(ci.Data))

		err = tc.process(programID, accounts, ci.Data, 0)
		if commit {
			result := ResultSuccess
			if err != nil {
				result = ResultFailed
			}
			MetricInstructions.WithLabelValues(programID.String(), result).Inc()
		}
		if err != nil {
			return &InstructionError{Index: i, Err: err}
		}
	}
	return nil
}
