package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/lekanlabs/taxmata/internal/model"
)

// preprocessOFX fixes common formatting issues in bank-exported OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Mixed-case SEVERITY values (must be INFO, WARN or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing angle bracket on a tag
	// that ends the line
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseOFX reads an OFX/QFX statement export and returns its rows in
// statement order, hashed for deduplication.
func ParseOFX(reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var txns []model.Transaction
	statements := 0

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++
		for _, ofxTxn := range stmt.BankTranList.Transactions {
			txns = append(txns, convertTransaction(ofxTxn))
		}
	}

	slog.Info("parsed OFX statement",
		"statements", statements,
		"transactions", len(txns))

	return txns, nil
}

// convertTransaction maps an OFX row onto a statement transaction. OFX
// encodes debits as negative amounts.
func convertTransaction(ofxTxn ofxgo.Transaction) model.Transaction {
	txn := model.Transaction{
		ID:          string(ofxTxn.FiTID),
		Date:        ofxTxn.DtPosted.Time,
		Description: extractDescription(ofxTxn),
		Reference:   string(ofxTxn.RefNum),
	}

	amount, _ := ofxTxn.TrnAmt.Float64()
	if amount < 0 {
		debit := -amount
		txn.Debit = &debit
	} else {
		credit := amount
		txn.Credit = &credit
	}

	txn.Hash = txn.GenerateHash()
	return txn
}

// extractDescription picks the most descriptive narration available. The
// NAME field is often a truncated counterparty; MEMO usually carries the
// full bank narration.
func extractDescription(txn ofxgo.Transaction) string {
	name := strings.TrimSpace(string(txn.Name))
	memo := strings.TrimSpace(string(txn.Memo))

	if txn.Payee != nil && txn.Payee.Name != "" {
		name = strings.TrimSpace(string(txn.Payee.Name))
	}

	switch {
	case name == "":
		return memo
	case memo == "" || memo == name:
		return name
	case strings.Contains(memo, name):
		return memo
	default:
		return name + " " + memo
	}
}
