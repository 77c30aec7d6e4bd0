package cli

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const lamportsDecimals = 9

var (
	ErrAmountRequired  = errors.New("one of --lamports or --sol is required")
	ErrAmountAmbiguous = errors.New("specify only one of --lamports or --sol")
)

func addAmountFlags(flags *pflag.FlagSet) {
	flags.Uint64("lamports", 0, "Amount in lamports")
	flags.String("sol", "", "Amount in SOL, up to 9 decimal places")
}

func amountFromFlags(cmd *cobra.Command) (uint64, error) {
	lamports, err := cmd.Flags().GetUint64("lamports")
	if err != nil {
		return 0, fmt.Errorf("failed to get lamports flag: %w", err)
	}
	sol, err := cmd.Flags().GetString("sol")
	if err != nil {
		return 0, fmt.Errorf("failed to get sol flag: %w", err)
	}

	switch {
	case lamports != 0 && sol != "":
		return 0, ErrAmountAmbiguous
	case sol != "":
		return ParseSOL(sol)
	case lamports != 0:
		return lamports, nil
	}
	return 0, ErrAmountRequired
}

// ParseSOL converts a decimal SOL amount to lamports without going through
// floating point.
func ParseSOL(s string) (uint64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid SOL amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("SOL amount must be positive: %q", s)
	}
	lamports := d.Shift(lamportsDecimals)
	if !lamports.IsInteger() {
		return 0, fmt.Errorf("SOL amount %q has more than %d decimal places", s, lamportsDecimals)
	}
	n := lamports.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("SOL amount %q is too large", s)
	}
	return n.Uint64(), nil
}

// FormatSOL renders lamports as a SOL amount with trailing zeros trimmed.
func FormatSOL(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -lamportsDecimals).String()
}

func formatLamports(lamports uint64) string {
	return humanize.BigComma(new(big.Int).SetUint64(lamports))
}
