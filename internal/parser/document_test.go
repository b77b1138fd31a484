package parser

import (
	"testing"
	"time"
)

var documentNow = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func TestParseDocumentText(t *testing.T) {
	pages := []string{
		`ACME BANK STATEMENT
Account ending 4242

2024-12-01  SHELL GAS STATION  45.23
2024-12-02  NETFLIX.COM  $15.99
2024/12/03  WHOLE FOODS MKT  (12.50)
Closing balance  1,234.56`,
		`Page 2 of 2
2024-12-28, AMAZON MKTP, 89.10`,
	}

	txns, stats := ParseDocumentText(pages, documentNow)

	if len(txns) != 4 {
		t.Fatalf("got %d transactions, want 4", len(txns))
	}
	if stats.Pages != 2 {
		t.Errorf("stats.Pages = %d, want 2", stats.Pages)
	}
	if stats.ParsedRows != 4 {
		t.Errorf("stats.ParsedRows = %d, want 4", stats.ParsedRows)
	}

	checks := []struct {
		date        string
		description string
		amount      float64
	}{
		{"2024-12-01", "SHELL GAS STATION", 45.23},
		{"2024-12-02", "NETFLIX.COM", 15.99},
		{"2024-12-03", "WHOLE FOODS MKT", -12.50},
		{"2024-12-28", "AMAZON MKTP", 89.10},
	}
	for i, want := range checks {
		got := txns[i]
		if got.Date.String() != want.date {
			t.Errorf("txn %d date = %s, want %s", i, got.Date, want.date)
		}
		if got.Description != want.description {
			t.Errorf("txn %d description = %q, want %q", i, got.Description, want.description)
		}
		if got.Amount != want.amount {
			t.Errorf("txn %d amount = %v, want %v", i, got.Amount, want.amount)
		}
	}
}

func TestParseDocumentTextSkipsUnusableLines(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantTxns    int
		wantSkipped int
	}{
		{"no date prefix", "SHELL GAS STATION  45.23", 0, 0},
		{"date not at line start", "posted 2024-12-01  SHELL  45.23", 0, 0},
		{"fewer than three tokens", "2024-12-01  45.23", 0, 1},
		{"single-space line never splits", "2024-12-01 SHELL 45.23", 0, 1},
		{"no amount-shaped token", "2024-12-01  SHELL GAS  pending", 0, 1},
		{"valid line", "2024-12-01  SHELL GAS  45.23", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, stats := ParseDocumentText([]string{tt.line}, documentNow)
			if len(txns) != tt.wantTxns {
				t.Errorf("got %d transactions, want %d", len(txns), tt.wantTxns)
			}
			if stats.SkippedRows != tt.wantSkipped {
				t.Errorf("stats.SkippedRows = %d, want %d", stats.SkippedRows, tt.wantSkipped)
			}
		})
	}
}

func TestParseDocumentTextDefaultDescription(t *testing.T) {
	// Amount-shaped token right after the date leaves no description tokens.
	txns, _ := ParseDocumentText([]string{"2024-12-01  45.23  POSTED"}, documentNow)

	if len(txns) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txns))
	}
	if txns[0].Description != "Transaction" {
		t.Errorf("description = %q, want %q", txns[0].Description, "Transaction")
	}
	if txns[0].Amount != 45.23 {
		t.Errorf("amount = %v, want 45.23", txns[0].Amount)
	}
}

func TestParseDocumentTextAmountScannedFromEnd(t *testing.T) {
	// Both a reference number and an amount: the rightmost amount-shaped
	// token wins, everything between date and it is description.
	txns, _ := ParseDocumentText([]string{"2024-12-01  CHECK 1024  500.00"}, documentNow)

	if len(txns) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txns))
	}
	if txns[0].Description != "CHECK 1024" {
		t.Errorf("description = %q, want %q", txns[0].Description, "CHECK 1024")
	}
	if txns[0].Amount != 500.00 {
		t.Errorf("amount = %v, want 500.00", txns[0].Amount)
	}
}
