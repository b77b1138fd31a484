package parser

import (
	"errors"
	"testing"

	"github.com/cardwise/statement-ingest/internal/common"
)

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20241215120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20241201120000[0:GMT]
<DTEND>20241231120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20241202120000[0:GMT]
<TRNAMT>-15.99
<FITID>2024120201
<NAME>NETFLIX.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20241215120000[0:GMT]
<TRNAMT>120.00
<FITID>2024121501
<NAME>PAYMENT THANK YOU
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>500.00
<DTASOF>20241231120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseOFX(t *testing.T) {
	txns, err := ParseOFX([]byte(sampleOFX))
	if err != nil {
		t.Fatalf("ParseOFX() error = %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}

	// OFX lists the charge as -15.99; our convention flips it positive.
	if txns[0].Description != "NETFLIX.COM" || txns[0].Amount != 15.99 {
		t.Errorf("txn 0 = %+v, want NETFLIX.COM charge of 15.99", txns[0])
	}
	if txns[0].Date.String() != "2024-12-02" {
		t.Errorf("txn 0 date = %s, want 2024-12-02", txns[0].Date)
	}

	// The payment arrives positive in OFX and lands negative here.
	if txns[1].Description != "PAYMENT THANK YOU" || txns[1].Amount != -120.00 {
		t.Errorf("txn 1 = %+v, want payment of -120.00", txns[1])
	}
}

func TestParseOFXRejectsGarbage(t *testing.T) {
	_, err := ParseOFX([]byte("this is not an ofx document"))
	if !errors.Is(err, common.ErrParseFailure) {
		t.Errorf("ParseOFX() error = %v, want ErrParseFailure", err)
	}
}
