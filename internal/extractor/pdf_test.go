package extractor

import (
	"strings"
	"testing"
)

func TestReadable(t *testing.T) {
	statement := []string{
		"Statement Period: 2024-12-01 to 2024-12-31\n" +
			"Date  Description  Amount\n" +
			"2024-12-01  SHELL GAS STATION  45.23\n" +
			"2024-12-02  NETFLIX.COM  15.99",
	}

	tests := []struct {
		name  string
		pages []string
		want  bool
	}{
		{"typical statement page", statement, true},
		{"empty", nil, false},
		{"too short", []string{"statement"}, false},
		{
			"garbage from identity-encoded font",
			[]string{strings.Repeat("þÿÄÖ", 40)},
			false,
		},
		{
			"clean text but not a statement",
			[]string{strings.Repeat("lorem ipsum dolor sit amet consectetur ", 5)},
			false,
		},
		{
			"mostly garbage with a statement word",
			[]string{"balance " + strings.Repeat("ÄÖÜþ", 60)},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Readable(tt.pages); got != tt.want {
				t.Errorf("Readable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextQuality(t *testing.T) {
	if q := textQuality(nil); q != 0 {
		t.Errorf("textQuality(nil) = %v, want 0", q)
	}
	if q := textQuality([]string{"Account balance: $1,234.56"}); q != 1.0 {
		t.Errorf("textQuality(clean) = %v, want 1.0", q)
	}
	// Half clean, half high-bit garbage.
	mixed := []string{"abcd" + strings.Repeat("þ", 4)}
	if q := textQuality(mixed); q != 0.5 {
		t.Errorf("textQuality(mixed) = %v, want 0.5", q)
	}
}

func TestExtractPagesRejectsGarbage(t *testing.T) {
	pages, err := ExtractPages([]byte("this is not a pdf at all"), nil)
	if err == nil {
		t.Fatalf("expected error for non-PDF input, got pages=%q", pages)
	}
}

func TestProgressFuncNilSafe(t *testing.T) {
	var f ProgressFunc
	f.report(1, 10) // must not panic

	var calls int
	f = func(page, total int) { calls++ }
	f.report(1, 2)
	f.report(2, 2)
	if calls != 2 {
		t.Errorf("progress called %d times, want 2", calls)
	}
}
