package parser

import (
	"testing"
	"time"

	"github.com/cardwise/statement-ingest/internal/models"
)

var csvNow = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

func TestParseCSVUnifiedAmount(t *testing.T) {
	input := "Date,Description,Amount,Category\n" +
		"2024-12-01,Whole Foods Market,89.67,Groceries\n" +
		"2024-12-05,Payment Received,-120.00,\n"

	txns, mapping, stats, err := ParseCSV(input, csvNow)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if mapping.Amount != 2 || mapping.Category != 3 {
		t.Errorf("mapping = %+v, want amount 2 and category 3", mapping)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	if txns[0].Amount != 89.67 || txns[0].Description != "Whole Foods Market" {
		t.Errorf("txn 0 = %+v", txns[0])
	}
	if txns[0].Category != "Groceries" {
		t.Errorf("txn 0 category = %q, want source label preserved", txns[0].Category)
	}
	if txns[1].Amount != -120.00 {
		t.Errorf("txn 1 amount = %v, want -120.00", txns[1].Amount)
	}
	if stats.ParsedRows != 2 || stats.SkippedRows != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestParseCSVDebitCreditColumns(t *testing.T) {
	input := "Date,Description,Debit,Credit\n" +
		"2024-12-01,Coffee,50.00,\n" +
		"2024-12-02,Refund,,20.00\n"

	txns, mapping, _, err := ParseCSV(input, csvNow)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if !mapping.HasDebitCredit() {
		t.Fatalf("mapping = %+v, want debit/credit mapped", mapping)
	}
	if txns[0].Amount != 50.00 {
		t.Errorf("debit row amount = %v, want 50.00", txns[0].Amount)
	}
	if txns[1].Amount != -20.00 {
		t.Errorf("credit row amount = %v, want -20.00", txns[1].Amount)
	}
}

func TestParseCSVInvertedSignConvention(t *testing.T) {
	// Spend listed negative: the resolver flips every unified amount.
	input := "Date,Description,Amount\n" +
		"2024-12-01,Coffee,-4.50\n" +
		"2024-12-02,Books,-31.00\n" +
		"2024-12-03,Groceries,-89.67\n" +
		"2024-12-15,Payment,250.00\n"

	txns, _, _, err := ParseCSV(input, csvNow)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	want := []float64{4.50, 31.00, 89.67, -250.00}
	for i, w := range want {
		if txns[i].Amount != w {
			t.Errorf("txn %d amount = %v, want %v", i, txns[i].Amount, w)
		}
	}
}

func TestParseCSVPositionalDefaults(t *testing.T) {
	// Unrecognized headers: date, description, amount fall back to columns
	// 0, 1, 2 and no sign inference runs.
	input := "c1,c2,c3\n" +
		"2024-12-01,Mystery Shop,-12.00\n"

	txns, mapping, _, err := ParseCSV(input, csvNow)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if mapping != models.NewColumnMapping() {
		t.Errorf("mapping = %+v, want all unset", mapping)
	}
	if len(txns) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txns))
	}
	if txns[0].Date.String() != "2024-12-01" || txns[0].Description != "Mystery Shop" || txns[0].Amount != -12.00 {
		t.Errorf("txn = %+v", txns[0])
	}
}

func TestParseCSVDropsNonFiniteAmounts(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"2024-12-01,Coffee,4.50\n" +
		"2024-12-02,Broken,NaN\n"

	txns, _, stats, err := ParseCSV(input, csvNow)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txns))
	}
	if stats.SkippedRows != 1 {
		t.Errorf("stats.SkippedRows = %d, want 1", stats.SkippedRows)
	}
}

func TestParseCSVUnparseableDateDefaultsToNow(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"soon,Coffee,4.50\n"

	txns, _, _, err := ParseCSV(input, csvNow)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if txns[0].Date.String() != "2025-02-01" {
		t.Errorf("date = %s, want injected now 2025-02-01", txns[0].Date)
	}
}

func TestParseCSVEmptyInput(t *testing.T) {
	txns, _, stats, err := ParseCSV("", csvNow)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(txns) != 0 || stats.ParsedRows != 0 {
		t.Errorf("empty input produced txns=%d stats=%+v", len(txns), stats)
	}
}
