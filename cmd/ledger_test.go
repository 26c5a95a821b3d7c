package cmd

import (
	"bytes"
	"testing"
	"time"

	"erp-backend/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayFlag(t *testing.T) {
	from, err := parseDayFlag("2024-04-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), from)

	to, err := parseDayFlag("2024-04-01", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 23, 59, 59, 999999999, time.UTC), to)

	zero, err := parseDayFlag("", true)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = parseDayFlag("04/01/2024", false)
	assert.Error(t, err)
}

func TestPrintStatement(t *testing.T) {
	st := ledger.Statement{
		OpeningBalance: 100,
		ClosingBalance: 1300,
		TotalDebit:     1500,
		TotalCredit:    300,
		Transactions: []ledger.Row{
			{Date: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), Type: ledger.TypeSale, RefID: "s1", Number: "S-0001", Debit: 1500, Balance: 1600},
			{Date: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), Type: ledger.TypePaymentIn, RefID: "p1", Credit: 300, Balance: 1300},
		},
		Unresolved: []string{"p9"},
	}

	var buf bytes.Buffer
	require.NoError(t, printStatement(&buf, st, "$"))
	out := buf.String()

	assert.Contains(t, out, "S-0001")
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "$1,600.00")
	assert.Contains(t, out, "$1,300.00")
	assert.Contains(t, out, "unresolved payments: p9")
}
