package vault_test

import (
	"testing"

	vaultprogram "github.com/malbeclabs/solvault/smartcontract/programs/vault"
	"github.com/malbeclabs/solvault/smartcontract/sdk/go/vault"
	"github.com/stretchr/testify/require"
)

func TestSDK_Vault_DecodeTransactionError(t *testing.T) {
	t.Parallel()

	require.NoError(t, vault.DecodeTransactionError(nil))

	tests := []struct {
		name     string
		metaErr  any
		wantIs   error
		contains string
	}{
		{
			name:     "vault program error",
			metaErr:  map[string]any{"InstructionError": []any{1, map[string]any{"Custom": 6004}}},
			wantIs:   vaultprogram.ErrVaultNotOpen,
			contains: "instruction 1",
		},
		{
			name:     "unknown custom code",
			metaErr:  map[string]any{"InstructionError": []any{0, map[string]any{"Custom": 1}}},
			contains: "custom program error 1",
		},
		{
			name:     "builtin instruction error",
			metaErr:  map[string]any{"InstructionError": []any{0, "MissingRequiredSignature"}},
			contains: "MissingRequiredSignature",
		},
		{
			name:     "transaction level error",
			metaErr:  map[string]any{"InsufficientFundsForRent": map[string]any{"account_index": 2}},
			contains: "InsufficientFundsForRent",
		},
		{
			name:     "bare string",
			metaErr:  "AccountNotFound",
			contains: "AccountNotFound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := vault.DecodeTransactionError(tt.metaErr)
			require.ErrorIs(t, err, vault.ErrTransactionFailed)
			require.ErrorContains(t, err, tt.contains)
			if tt.wantIs != nil {
				require.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}
