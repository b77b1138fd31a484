package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardwise/statement-ingest/internal/models"
)

func txnOn(year int, month time.Month, day int, description string, amount float64) models.Transaction {
	return models.Transaction{
		Date:        models.NewDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC)),
		Description: description,
		Amount:      amount,
	}
}

func TestDetectSubscriptionsRecurringMerchant(t *testing.T) {
	txns := []models.Transaction{
		txnOn(2024, 10, 5, "Netflix", 9.99),
		txnOn(2024, 11, 5, "Netflix", 9.99),
		txnOn(2024, 12, 5, "Netflix", 9.99),
	}

	subs := DetectSubscriptions(txns)

	require.Len(t, subs, 1)
	assert.Equal(t, "netflix", subs[0].Merchant)
	assert.Equal(t, 3, subs[0].Occurrences)
	assert.InDelta(t, 9.99, subs[0].AverageAmount, 1e-9)
	assert.Equal(t, "2024-12-05", subs[0].LastDate.String())
}

func TestDetectSubscriptionsSameMonthFails(t *testing.T) {
	txns := []models.Transaction{
		txnOn(2024, 12, 1, "Netflix", 9.99),
		txnOn(2024, 12, 20, "Netflix", 9.99),
	}

	assert.Empty(t, DetectSubscriptions(txns), "two charges in one month span only one year-month bucket")
}

func TestDetectSubscriptionsSingleOccurrenceFails(t *testing.T) {
	assert.Empty(t, DetectSubscriptions([]models.Transaction{
		txnOn(2024, 12, 1, "Netflix", 9.99),
	}))
}

func TestDetectSubscriptionsIrregularAmountsFail(t *testing.T) {
	txns := []models.Transaction{
		txnOn(2024, 10, 5, "Grid Power Co", 10.00),
		txnOn(2024, 11, 5, "Grid Power Co", 30.00),
	}

	// mean 20, population variance 100, coefficient 5: far above 0.5.
	assert.Empty(t, DetectSubscriptions(txns))
}

func TestDetectSubscriptionsGroupsByFullDescriptionCaseFolded(t *testing.T) {
	txns := []models.Transaction{
		txnOn(2024, 10, 5, "NETFLIX.COM", 15.99),
		txnOn(2024, 11, 5, "netflix.com", 15.99),
	}

	subs := DetectSubscriptions(txns)

	require.Len(t, subs, 1)
	assert.Equal(t, "netflix.com", subs[0].Merchant)
	assert.Equal(t, 2, subs[0].Occurrences)
}

func TestDetectSubscriptionsCreditsCountByAbsoluteAmount(t *testing.T) {
	// A recurring payment shows up negative but recurs all the same.
	txns := []models.Transaction{
		txnOn(2024, 10, 1, "Autopay", -50.00),
		txnOn(2024, 11, 1, "Autopay", -50.00),
	}

	subs := DetectSubscriptions(txns)

	require.Len(t, subs, 1)
	assert.InDelta(t, 50.00, subs[0].AverageAmount, 1e-9)
}

func TestDetectSubscriptionsSortedAndCapped(t *testing.T) {
	var txns []models.Transaction
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("Service %c", 'A'+i)
		amount := float64(i + 1)
		txns = append(txns,
			txnOn(2024, 10, 3, name, amount),
			txnOn(2024, 11, 3, name, amount),
		)
	}

	subs := DetectSubscriptions(txns)

	require.Len(t, subs, 6, "candidate list caps at six")
	for i := 1; i < len(subs); i++ {
		assert.GreaterOrEqual(t, subs[i-1].AverageAmount, subs[i].AverageAmount,
			"candidates must sort by descending average amount")
	}
	assert.InDelta(t, 8.0, subs[0].AverageAmount, 1e-9, "largest average first")
}

func TestDetectSubscriptionsZeroAmountGroupSkipped(t *testing.T) {
	txns := []models.Transaction{
		txnOn(2024, 10, 1, "Zero Corp", 0),
		txnOn(2024, 11, 1, "Zero Corp", 0),
	}

	assert.Empty(t, DetectSubscriptions(txns), "zero-mean groups cannot pass the variation test")
}
