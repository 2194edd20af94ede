// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction represents a single row extracted from a bank statement.
// Debit and Credit are both optional; some settlement rows carry both
// (a fee-inclusive credit), so neither is enforced as exclusive.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string // Raw description text from the statement
	Reference   string // Bank reference string, if present
	Hash        string
	Debit       *float64
	Credit      *float64
	Balance     *float64 // Running balance, if the statement carries one
}

// Amount returns the signed value of the transaction: credits positive,
// debits negative.
func (t *Transaction) Amount() float64 {
	var amount float64
	if t.Credit != nil {
		amount += *t.Credit
	}
	if t.Debit != nil {
		amount -= *t.Debit
	}
	return amount
}

// AbsAmount returns the magnitude of the transaction regardless of direction.
func (t *Transaction) AbsAmount() float64 {
	a := t.Amount()
	if a < 0 {
		return -a
	}
	return a
}

// IsCredit reports whether money flowed into the account.
func (t *Transaction) IsCredit() bool {
	return t.Amount() > 0
}

// GenerateHash creates a unique hash for duplicate detection. The key is
// (date, description, debit, credit) so overlapping page batches of the
// same document collapse to one row.
func (t *Transaction) GenerateHash() string {
	debit := ""
	if t.Debit != nil {
		debit = fmt.Sprintf("%.2f", *t.Debit)
	}
	credit := ""
	if t.Credit != nil {
		credit = fmt.Sprintf("%.2f", *t.Credit)
	}
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Description,
		debit,
		credit)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
