package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/cardwise/statement-ingest/internal/common"
	"github.com/cardwise/statement-ingest/internal/models"
)

// ParseOFX reads an OFX/QFX document and returns its transactions across
// all bank and credit-card statements it contains. OFX lists debits as
// negative amounts, so values are negated to land on the charge-positive
// convention.
func ParseOFX(data []byte) ([]models.Transaction, error) {
	resp, err := ofxgo.ParseResponse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: reading OFX document: %v", common.ErrParseFailure, err)
	}

	var txns []models.Transaction
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		for _, tx := range stmt.BankTranList.Transactions {
			txns = append(txns, transactionFromOFX(tx))
		}
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		for _, tx := range stmt.BankTranList.Transactions {
			txns = append(txns, transactionFromOFX(tx))
		}
	}
	return txns, nil
}

func transactionFromOFX(tx ofxgo.Transaction) models.Transaction {
	amount, _ := tx.TrnAmt.Float64()
	return models.Transaction{
		Date:        models.NewDate(tx.DtPosted.Time),
		Description: ofxDescription(tx),
		Amount:      -amount,
	}
}

// ofxDescription picks the cleanest merchant text available: PAYEE first,
// then NAME, then MEMO.
func ofxDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}
	return strings.TrimSpace(string(tx.Memo))
}
