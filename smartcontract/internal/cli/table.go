package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	vaultsdk "github.com/malbeclabs/solvault/smartcontract/sdk/go/vault"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetRowLine(true)
	table.SetHeader(header)
	return table
}

func printAddresses(w io.Writer, programID solana.PublicKey, addrs *vaultsdk.Addresses) {
	table := newTable(w, "Account", "Address", "Bump")
	table.Append([]string{"Program", programID.String(), ""})
	table.Append([]string{"User", addrs.User.String(), ""})
	table.Append([]string{"State", addrs.State.String(), strconv.Itoa(int(addrs.StateBump))})
	table.Append([]string{"Vault", addrs.Vault.String(), strconv.Itoa(int(addrs.VaultBump))})
	table.Render()
}

func printVault(w io.Writer, v *vaultsdk.Vault) {
	status := "closed"
	if v.Open() {
		status = "open"
	}
	fmt.Fprintln(w, "Vault:", v.Vault)
	fmt.Fprintln(w, "Status:", status)

	table := newTable(w, "Account", "Address", "Balance\n(SOL)", "Balance\n(lamports)")
	table.Append([]string{"State", v.Addresses.State.String(), FormatSOL(v.StateLamports), formatLamports(v.StateLamports)})
	table.Append([]string{"Vault", v.Vault.String(), FormatSOL(v.Balance), formatLamports(v.Balance)})
	table.Append([]string{"Reserve", "", FormatSOL(v.Reserve), formatLamports(v.Reserve)})
	table.Append([]string{"Deposited", "", FormatSOL(v.Deposited()), formatLamports(v.Deposited())})
	table.Render()
}

func printVaults(w io.Writer, records []*vaultsdk.VaultRecord) {
	fmt.Fprintf(w, "Vaults: %d\n", len(records))
	if len(records) == 0 {
		return
	}
	table := newTable(w, "State", "Vault", "Vault Bump", "State Bump", "Balance\n(SOL)")
	for _, r := range records {
		table.Append([]string{
			r.State.String(),
			r.Vault.String(),
			strconv.Itoa(int(r.Record.VaultBump)),
			strconv.Itoa(int(r.Record.StateBump)),
			FormatSOL(r.Balance),
		})
	}
	table.Render()
}

func printTransaction(w io.Writer, action string, sig solana.Signature, res *solanarpc.GetTransactionResult) {
	fmt.Fprintf(w, "%s: %s\n", action, sig)
	if res != nil && res.Meta != nil {
		fmt.Fprintf(w, "Slot: %d, fee: %s lamports\n", res.Slot, formatLamports(res.Meta.Fee))
	}
}
