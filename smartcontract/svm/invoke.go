package svm

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

// txContext is the state shared by every instruction and cross-program
// invocation of one transaction.
type txContext struct {
	ledger  *Ledger
	working map[solana.PublicKey]*Account
	stack   []solana.PublicKey
	logs    []string
}

func (tc *txContext) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	tc.logs = append(tc.logs, msg)
	tc.ledger.log.Debug("svm: " + msg)
}

// process runs one program invocation: it builds the program's account
// views from the working set, runs the program, verifies what it changed,
// and writes the result back.
func (tc *txContext) process(programID solana.PublicKey, metas []*solana.AccountMeta, data []byte, depth int) error {
	program, ok := tc.ledger.programs[programID]
	if !ok {
		return fmt.Errorf("%w: %s", runtime.ErrUnsupportedProgramID, programID)
	}
	if err := tc.push(programID); err != nil {
		return err
	}
	defer tc.pop()

	f := newFrame(tc, program, metas, depth)
	tc.logf("Program %s invoke [%d]", programID, depth+1)
	if err := program.Process(f, f.accounts, data); err != nil {
		tc.logf("Program %s failed: %v", programID, err)
		return err
	}
	if err := f.verify(); err != nil {
		tc.logf("Program %s failed: %v", programID, err)
		return err
	}
	f.writeBack()
	tc.logf("Program %s success", programID)
	return nil
}

// push records programID on the invocation stack. A program may call itself
// directly but may not be re-entered through another program.
func (tc *txContext) push(programID solana.PublicKey) error {
	if n := len(tc.stack); n > 0 {
		for i, id := range tc.stack {
			if id.Equals(programID) && i != n-1 {
				return fmt.Errorf("%w: %s", ErrReentrancyNotAllowed, programID)
			}
		}
	}
	tc.stack = append(tc.stack, programID)
	return nil
}

func (tc *txContext) pop() {
	tc.stack = tc.stack[:len(tc.stack)-1]
}

// frame is the runtime.Context handed to a program for one invocation.
type frame struct {
	tc      *txContext
	program runtime.Program
	depth   int

	accounts []*runtime.AccountInfo
	byKey    map[solana.PublicKey]*runtime.AccountInfo
	pre      map[solana.PublicKey]*Account
}

var _ runtime.Context = (*frame)(nil)

func newFrame(tc *txContext, program runtime.Program, metas []*solana.AccountMeta, depth int) *frame {
	f := &frame{
		tc:       tc,
		program:  program,
		depth:    depth,
		accounts: make([]*runtime.AccountInfo, 0, len(metas)),
		byKey:    make(map[solana.PublicKey]*runtime.AccountInfo, len(metas)),
		pre:      make(map[solana.PublicKey]*Account, len(metas)),
	}
	for _, m := range metas {
		// Duplicate keys share one view with the union of their privileges.
		if info, ok := f.byKey[m.PublicKey]; ok {
			info.IsSigner = info.IsSigner || m.IsSigner
			info.IsWritable = info.IsWritable || m.IsWritable
			f.accounts = append(f.accounts, info)
			continue
		}
		acct := tc.working[m.PublicKey]
		info := &runtime.AccountInfo{
			Key:        m.PublicKey,
			Lamports:   acct.Lamports,
			Data:       bytes.Clone(acct.Data),
			Owner:      acct.Owner,
			Executable: acct.Executable,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
		}
		if info.Data == nil {
			info.Data = []byte{}
		}
		f.byKey[m.PublicKey] = info
		f.pre[m.PublicKey] = acct.Clone()
		f.accounts = append(f.accounts, info)
	}
	return f
}

func (f *frame) ProgramID() solana.PublicKey {
	return f.program.ID()
}

func (f *frame) Rent() runtime.Rent {
	return f.tc.ledger.cfg.Rent
}

func (f *frame) Log(format string, args ...any) {
	f.tc.logf("Program log: "+format, args...)
}

// Invoke runs ix as a cross-program invocation. Every account ix references
// must be visible to the caller. Signer and writable privileges cannot
// exceed the caller's, except that addresses derived from signers and the
// caller's program ID sign for this call.
func (f *frame) Invoke(ix solana.Instruction, signers ...runtime.SignerSeeds) error {
	if f.depth+1 > f.tc.ledger.cfg.MaxInvokeDepth {
		return ErrCallDepth
	}

	calleeID := ix.ProgramID()
	if _, ok := f.byKey[calleeID]; !ok {
		return fmt.Errorf("%w: program %s", runtime.ErrMissingAccount, calleeID)
	}
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("%w: %w", runtime.ErrInvalidInstructionData, err)
	}

	pdaSigners := make(map[solana.PublicKey]struct{}, len(signers))
	for _, s := range signers {
		addr, err := s.Address(f.program.ID())
		if err != nil {
			return err
		}
		pdaSigners[addr] = struct{}{}
	}

	metas := ix.Accounts()
	for _, m := range metas {
		info, ok := f.byKey[m.PublicKey]
		if !ok {
			return fmt.Errorf("%w: %s", runtime.ErrMissingAccount, m.PublicKey)
		}
		if m.IsWritable && !info.IsWritable {
			return fmt.Errorf("%w: %s writable privilege escalated", runtime.ErrPrivilegeEscalation, m.PublicKey)
		}
		if m.IsSigner && !info.IsSigner {
			if _, ok := pdaSigners[m.PublicKey]; !ok {
				return fmt.Errorf("%w: %s signer privilege escalated", runtime.ErrPrivilegeEscalation, m.PublicKey)
			}
		}
	}

	// Settle the caller's changes so the callee starts from them.
	if err := f.verify(); err != nil {
		return err
	}
	f.writeBack()

	if err := f.tc.process(calleeID, metas, data, f.depth+1); err != nil {
		return err
	}

	f.reload()
	return nil
}

// verify checks the changes the program made against what it is allowed to
// change: read-only accounts are untouched, only an account's owner may
// debit it or change its data, ownership moves only away from the current
// program with zeroed data, and lamports are conserved.
func (f *frame) verify() error {
	programID := f.program.ID()
	var preTotal, postTotal uint64
	for key, info := range f.byKey {
		pre := f.pre[key]
		if err := verifyAccount(programID, pre, info); err != nil {
			return fmt.Errorf("%w: %s", err, key)
		}
		preTotal += pre.Lamports
		postTotal += info.Lamports
	}
	if preTotal != postTotal {
		return fmt.Errorf("%w: before %d, after %d", ErrUnbalancedInstruction, preTotal, postTotal)
	}
	return nil
}

func verifyAccount(programID solana.PublicKey, pre *Account, post *runtime.AccountInfo) error {
	ownedByProgram := pre.Owner.Equals(programID)
	ownerChanged := !pre.Owner.Equals(post.Owner)
	dataChanged := !bytes.Equal(pre.Data, post.Data)

	if pre.Executable != post.Executable {
		return ErrExecutableModified
	}
	if !post.IsWritable {
		if pre.Lamports != post.Lamports {
			return ErrReadonlyLamportChange
		}
		if dataChanged {
			return ErrReadonlyDataModified
		}
		if ownerChanged {
			return ErrModifiedProgramID
		}
		return nil
	}
	if ownerChanged && (!ownedByProgram || !isZeroed(post.Data)) {
		return ErrModifiedProgramID
	}
	if post.Lamports < pre.Lamports && !ownedByProgram {
		return ErrExternalAccountLamportSpend
	}
	if dataChanged && !ownedByProgram {
		return ErrExternalAccountDataModified
	}
	return nil
}

func (f *frame) writeBack() {
	for key, info := range f.byKey {
		prev := f.tc.working[key]
		f.tc.working[key] = &Account{
			Lamports:   info.Lamports,
			Data:       bytes.Clone(info.Data),
			Owner:      info.Owner,
			Executable: info.Executable,
			RentEpoch:  prev.RentEpoch,
		}
	}
}

// reload refreshes the program's views after a cross-program invocation and
// makes the result the new baseline for verification.
func (f *frame) reload() {
	for key, info := range f.byKey {
		acct := f.tc.working[key]
		info.Lamports = acct.Lamports
		info.Data = bytes.Clone(acct.Data)
		if info.Data == nil {
			info.Data = []byte{}
		}
		info.Owner = acct.Owner
		f.pre[key] = acct.Clone()
	}
}
