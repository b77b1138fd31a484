package models

// Transaction is a single normalized statement entry. Amount is signed:
// positive means a charge (spend), negative means a credit (payment or
// refund), no matter which parsing path produced it.
type Transaction struct {
	Date        Date    `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

// ColumnUnset marks a semantic role with no matching column.
const ColumnUnset = -1

// ColumnMapping maps semantic roles to column indexes for one parsed file.
// Any role may be ColumnUnset; callers fall back to positional defaults
// (date 0, description 1, amount 2) instead of failing.
type ColumnMapping struct {
	Date        int `json:"date"`
	Description int `json:"description"`
	Amount      int `json:"amount"`
	Debit       int `json:"debit"`
	Credit      int `json:"credit"`
	Category    int `json:"category"`
}

// NewColumnMapping returns a mapping with every role unset.
func NewColumnMapping() ColumnMapping {
	return ColumnMapping{
		Date:        ColumnUnset,
		Description: ColumnUnset,
		Amount:      ColumnUnset,
		Debit:       ColumnUnset,
		Credit:      ColumnUnset,
		Category:    ColumnUnset,
	}
}

// HasDebitCredit reports whether separate debit/credit columns were mapped.
func (m ColumnMapping) HasDebitCredit() bool {
	return m.Debit != ColumnUnset || m.Credit != ColumnUnset
}

// Summary aggregates a transaction list. Balance holds
// max(0, charges - credits) and never goes negative.
type Summary struct {
	TotalSpend float64            `json:"totalSpend"`
	ByCategory map[string]float64 `json:"byCategory"`
	ByMerchant map[string]float64 `json:"byMerchant"`
	Balance    float64            `json:"balance"`
}

// SubscriptionCandidate is a merchant flagged as a likely recurring charge.
type SubscriptionCandidate struct {
	Merchant      string  `json:"merchant"`
	Occurrences   int     `json:"occurrences"`
	AverageAmount float64 `json:"averageAmount"`
	LastDate      Date    `json:"lastDate"`
}

// Stats counts what the parse did with its input rows. SkippedRows covers
// rows dropped locally (non-finite amounts, unusable document lines) that
// never become fatal errors.
type Stats struct {
	ParsedRows  int `json:"parsedRows"`
	SkippedRows int `json:"skippedRows"`
	Pages       int `json:"pages,omitempty"`
}

// Result is the complete output of one pipeline invocation. Transactions
// keep input order. Subscriptions holds at most six candidates sorted by
// descending average amount. MonthlyInterest is zero unless an APR was
// supplied.
type Result struct {
	Transactions    []Transaction           `json:"transactions"`
	Summary         Summary                 `json:"summary"`
	Subscriptions   []SubscriptionCandidate `json:"subscriptions"`
	MonthlyInterest float64                 `json:"monthlyInterest,omitempty"`
	Stats           Stats                   `json:"stats"`
}

// Empty reports whether the parse produced no transactions.
func (r *Result) Empty() bool {
	return len(r.Transactions) == 0
}
