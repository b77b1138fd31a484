package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cardwise/statement-ingest/internal/common"
)

func TestParseTabular(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeaders []string
		wantRows    []Row
	}{
		{
			name:        "simple",
			input:       "Date,Description,Amount\n2024-12-01,Coffee,4.50\n",
			wantHeaders: []string{"date", "description", "amount"},
			wantRows:    []Row{{"2024-12-01", "Coffee", "4.50"}},
		},
		{
			name:        "quoted field with embedded comma",
			input:       "Date,Description,Amount\n2024-12-01,\"Smith, Jones & Co\",12.00\n",
			wantHeaders: []string{"date", "description", "amount"},
			wantRows:    []Row{{"2024-12-01", "Smith, Jones & Co", "12.00"}},
		},
		{
			name:        "doubled quote emits literal quote",
			input:       "Description\n\"say \"\"hi\"\"\"\n",
			wantHeaders: []string{"description"},
			wantRows:    []Row{{`say "hi"`}},
		},
		{
			name:        "bom stripped and blanks dropped",
			input:       "\uFEFFDate,Amount\n\n  \n2024-01-01,1.00\n\n",
			wantHeaders: []string{"date", "amount"},
			wantRows:    []Row{{"2024-01-01", "1.00"}},
		},
		{
			name:        "fields trimmed",
			input:       " Date , Amount \n 2024-01-01 ,  5.00\n",
			wantHeaders: []string{"date", "amount"},
			wantRows:    []Row{{"2024-01-01", "5.00"}},
		},
		{
			name:        "short row tolerated",
			input:       "Date,Description,Amount\n2024-01-01,Coffee\n",
			wantHeaders: []string{"date", "description", "amount"},
			wantRows:    []Row{{"2024-01-01", "Coffee"}},
		},
		{
			name:        "crlf line endings",
			input:       "Date,Amount\r\n2024-01-01,3.00\r\n",
			wantHeaders: []string{"date", "amount"},
			wantRows:    []Row{{"2024-01-01", "3.00"}},
		},
		{
			name:        "empty input",
			input:       "\n  \n",
			wantHeaders: nil,
			wantRows:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseTabular(tt.input)
			if err != nil {
				t.Fatalf("ParseTabular() error = %v", err)
			}
			if !reflect.DeepEqual(table.Headers, tt.wantHeaders) {
				t.Errorf("headers = %q, want %q", table.Headers, tt.wantHeaders)
			}
			if !reflect.DeepEqual(table.Rows, tt.wantRows) {
				t.Errorf("rows = %q, want %q", table.Rows, tt.wantRows)
			}
		})
	}
}

func TestParseTabularRejectsBinary(t *testing.T) {
	_, err := ParseTabular("Date,Amount\n2024\x00garbage")
	if !errors.Is(err, common.ErrParseFailure) {
		t.Errorf("ParseTabular() error = %v, want ErrParseFailure", err)
	}

	_, err = ParseTabular(string([]byte{0xff, 0xfe, 0x00, 0x41}))
	if !errors.Is(err, common.ErrParseFailure) {
		t.Errorf("ParseTabular() on invalid UTF-8 error = %v, want ErrParseFailure", err)
	}
}

func TestRowGet(t *testing.T) {
	row := Row{"a", "b"}

	if got, ok := row.Get(1); !ok || got != "b" {
		t.Errorf("Get(1) = %q, %v; want \"b\", true", got, ok)
	}
	if _, ok := row.Get(2); ok {
		t.Error("Get(2) reported present for out-of-range index")
	}
	if _, ok := row.Get(-1); ok {
		t.Error("Get(-1) reported present for negative index")
	}
}
