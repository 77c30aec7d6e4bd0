package svm

import (
	"bytes"
	"math/big"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// Account is an account as stored by the ledger.
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	Executable bool
	RentEpoch  uint64
}

// NewSystemAccount returns an account holding lamports only.
func NewSystemAccount(lamports uint64) *Account {
	return &Account{
		Lamports: lamports,
		Owner:    solana.SystemProgramID,
	}
}

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = bytes.Clone(a.Data)
	if c.Data == nil {
		c.Data = []byte{}
	}
	return &c
}

func (a *Account) rpcAccount() *solanarpc.Account {
	return &solanarpc.Account{
		Lamports:   a.Lamports,
		Owner:      a.Owner,
		Data:       solanarpc.DataBytesOrJSONFromBytes(bytes.Clone(a.Data)),
		Executable: a.Executable,
		RentEpoch:  new(big.Int).SetUint64(a.RentEpoch),
		Space:      uint64(len(a.Data)),
	}
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
