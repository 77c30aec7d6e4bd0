package svm

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/jellydator/ttlcache/v3"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

// NativeLoaderID owns builtin programs such as the system program.
var NativeLoaderID = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")

// Ledger is a deterministic single-node ledger. It holds accounts in memory
// and executes transactions one at a time against registered programs.
type Ledger struct {
	log *slog.Logger
	cfg *Config

	mu          sync.Mutex
	accounts    map[solana.PublicKey]*Account
	programs    map[solana.PublicKey]runtime.Program
	slot        uint64
	blockhashes []solana.Hash
	txs         *ttlcache.Cache[solana.Signature, *TransactionResult]
}

func New(cfg *Config) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	txs := ttlcache.New(
		ttlcache.WithTTL[solana.Signature, *TransactionResult](cfg.TransactionTTL),
		ttlcache.WithDisableTouchOnHit[solana.Signature, *TransactionResult](),
	)

	l := &Ledger{
		log:      cfg.Logger,
		cfg:      cfg,
		accounts: make(map[solana.PublicKey]*Account),
		programs: make(map[solana.PublicKey]runtime.Program),
		txs:      txs,
	}

	sys := &systemProgram{}
	l.programs[sys.ID()] = sys
	l.accounts[sys.ID()] = &Account{
		Lamports:   1,
		Owner:      NativeLoaderID,
		Executable: true,
	}
	for _, p := range cfg.Programs {
		l.AddProgram(p)
	}

	genesis := sha256.Sum256([]byte("solvault-genesis"))
	l.blockhashes = []solana.Hash{solana.Hash(genesis)}
	return l, nil
}

// AddProgram deploys p at its program ID.
func (l *Ledger) AddProgram(p runtime.Program) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.programs[p.ID()] = p
	l.accounts[p.ID()] = &Account{
		Lamports:   l.cfg.Rent.MinimumBalance(0),
		Owner:      solana.BPFLoaderUpgradeableProgramID,
		Executable: true,
	}
	l.log.Debug("svm: program deployed", "programID", p.ID())
}

// Airdrop credits lamports to an account, creating it if needed.
func (l *Ledger) Airdrop(pk solana.PublicKey, lamports uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[pk]
	if !ok {
		acct = NewSystemAccount(0)
		l.accounts[pk] = acct
	}
	if acct.Executable {
		return fmt.Errorf("cannot airdrop to executable account %s", pk)
	}
	acct.Lamports += lamports
	return nil
}

// SetAccount replaces an account wholesale. Setting an account with zero
// lamports removes it.
func (l *Ledger) SetAccount(pk solana.PublicKey, acct *Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acct == nil || acct.Lamports == 0 {
		delete(l.accounts, pk)
		return
	}
	l.accounts[pk] = acct.Clone()
}

// GetAccount returns a copy of the account stored at pk.
func (l *Ledger) GetAccount(pk solana.PublicKey) (*Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[pk]
	if !ok {
		return nil, false
	}
	return acct.Clone(), true
}

// Balance returns the lamports held by pk, zero if the account does not exist.
func (l *Ledger) Balance(pk solana.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(pk)
}

func (l *Ledger) Rent() runtime.Rent {
	return l.cfg.Rent
}

func (l *Ledger) Slot() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slot
}

// LatestBlockhash returns the most recently issued blockhash.
func (l *Ledger) LatestBlockhash() solana.Hash {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.blockhashes[len(l.blockhashes)-1]
}

// AdvanceSlots moves the ledger forward n empty slots, issuing a blockhash
// for each.
func (l *Ledger) AdvanceSlots(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for range n {
		l.advanceSlotLocked()
	}
}

// RetainedTransactions returns the number of transaction results kept for
// status and transaction lookups.
func (l *Ledger) RetainedTransactions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.txs.Len()
}

func (l *Ledger) advanceSlotLocked() {
	l.slot++
	l.txs.DeleteExpired()

	prev := l.blockhashes[len(l.blockhashes)-1]
	var buf [solana.PublicKeyLength + 8]byte
	copy(buf[:], prev[:])
	binary.LittleEndian.PutUint64(buf[solana.PublicKeyLength:], l.slot)
	l.blockhashes = append(l.blockhashes, solana.Hash(sha256.Sum256(buf[:])))

	if len(l.blockhashes) > l.cfg.MaxBlockhashAge {
		l.blockhashes = l.blockhashes[len(l.blockhashes)-l.cfg.MaxBlockhashAge:]
	}
}

func (l *Ledger) isRecentBlockhashLocked(h solana.Hash) bool {
	for _, b := range l.blockhashes {
		if b == h {
			return true
		}
	}
	return false
}

func (l *Ledger) balanceLocked(pk solana.PublicKey) uint64 {
	if acct, ok := l.accounts[pk]; ok {
		return acct.Lamports
	}
	return 0
}

// loadLocked returns a working copy of the account at pk, or an empty
// system-owned account if none exists.
func (l *Ledger) loadLocked(pk solana.PublicKey) *Account {
	if acct, ok := l.accounts[pk]; ok {
		return acct.Clone()
	}
	return NewSystemAccount(0)
}

func (l *Ledger) storeLocked(pk solana.PublicKey, acct *Account) {
	if acct.Lamports == 0 {
		delete(l.accounts, pk)
		return
	}
	l.accounts[pk] = acct
}
