package svm

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/solvault/smartcontract/runtime"
)

var (
	ErrLoggerRequired = errors.New("logger is required")
)

const (
	defaultLamportsPerSignature = 5000
	defaultMaxBlockhashAge      = 150
	defaultTransactionTTL       = 10 * time.Minute
	defaultMaxInvokeDepth       = 4

	// MaxPermittedDataLength is the largest account the system program will
	// allocate.
	MaxPermittedDataLength = 10 * 1024 * 1024
)

type Config struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
	Rent   runtime.Rent

	// Programs are deployed at construction, in addition to the system
	// program.
	Programs []runtime.Program

	LamportsPerSignature uint64
	MaxBlockhashAge      int
	MaxInvokeDepth       int
	TransactionTTL       time.Duration
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return ErrLoggerRequired
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Rent.LamportsPerByteYear == 0 {
		c.Rent = runtime.DefaultRent()
	}
	if c.LamportsPerSignature == 0 {
		c.LamportsPerSignature = defaultLamportsPerSignature
	}
	if c.MaxBlockhashAge <= 0 {
		c.MaxBlockhashAge = defaultMaxBlockhashAge
	}
	if c.MaxInvokeDepth <= 0 {
		c.MaxInvokeDepth = defaultMaxInvokeDepth
	}
	if c.TransactionTTL <= 0 {
		c.TransactionTTL = defaultTransactionTTL
	}
	return nil
}
