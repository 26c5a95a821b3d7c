package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"erp-backend/database"
	"erp-backend/ledger"
	"erp-backend/logger"
	"erp-backend/models"
	"erp-backend/utils"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Print a party statement from a JSON export",
	Long: `Ledger builds a customer or supplier statement straight from a legacy or
current JSON export, without a database. Useful to check an export before
importing it.`,
	Example: `  # Full statement as a table
  erp-backend ledger --file export.json --party-type customer --party-id c1

  # One quarter as JSON
  erp-backend ledger --file export.json --party-type supplier --party-id s1 \
    --from 2024-01-01 --to 2024-03-31 --format json`,
	RunE: runLedger,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)

	ledgerCmd.Flags().String("file", "", "Path to the JSON export")
	ledgerCmd.Flags().String("party-type", "customer", "customer or supplier")
	ledgerCmd.Flags().String("party-id", "", "Party id")
	ledgerCmd.Flags().String("from", "", "First day (YYYY-MM-DD)")
	ledgerCmd.Flags().String("to", "", "Last day, inclusive (YYYY-MM-DD)")
	ledgerCmd.Flags().String("format", "table", "Output format: table or json")
	_ = ledgerCmd.MarkFlagRequired("file")
	_ = ledgerCmd.MarkFlagRequired("party-id")
}

func runLedger(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ledger")

	file, _ := cmd.Flags().GetString("file")
	partyType, _ := cmd.Flags().GetString("party-type")
	partyID, _ := cmd.Flags().GetString("party-id")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	format, _ := cmd.Flags().GetString("format")

	q := ledger.Query{PartyType: models.PartyType(strings.ToLower(partyType)), PartyID: partyID}
	if !q.PartyType.Valid() {
		return fmt.Errorf("party type must be customer or supplier, got %q", partyType)
	}
	var err error
	if q.From, err = parseDayFlag(fromStr, false); err != nil {
		return err
	}
	if q.To, err = parseDayFlag(toStr, true); err != nil {
		return err
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	res, err := database.PrepareLegacy(raw)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		log.Warn().Str("file", file).Msg(w)
	}

	snap := res.Snapshot
	symbol := snap.CurrencySymbol
	if symbol == "" {
		symbol = cfg.CurrencySymbol
	}
	st := ledger.BuildLedgerData(q, snap)

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case "table":
		return printStatement(cmd.OutOrStdout(), st, symbol)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printStatement(out io.Writer, st ledger.Statement, symbol string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Date\tType\tRef\tDebit\tCredit\tBalance\t\n")
	fmt.Fprintf(w, "\topening\t\t\t\t%s\t\n", utils.FormatMoney(st.OpeningBalance, symbol))
	for _, r := range st.Transactions {
		ref := r.Number
		if ref == "" {
			ref = r.RefID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Date.Format("2006-01-02"), r.Type, ref,
			utils.FormatMoney(r.Debit, symbol), utils.FormatMoney(r.Credit, symbol), utils.FormatMoney(r.Balance, symbol))
	}
	fmt.Fprintf(w, "\tclosing\t\t%s\t%s\t%s\t\n",
		utils.FormatMoney(st.TotalDebit, symbol), utils.FormatMoney(st.TotalCredit, symbol), utils.FormatMoney(st.ClosingBalance, symbol))
	if err := w.Flush(); err != nil {
		return err
	}
	if len(st.Unresolved) > 0 {
		fmt.Fprintf(out, "\nunresolved payments: %s\n", strings.Join(st.Unresolved, ", "))
	}
	return nil
}

func parseDayFlag(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q. Use YYYY-MM-DD: %w", s, err)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
