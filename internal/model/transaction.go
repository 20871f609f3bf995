package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single financial transaction supplied by the
// embedding application. Amounts follow the bank convention: positive means
// money leaving the account.
type Transaction struct {
	Date         time.Time
	ID           string
	Name         string
	MerchantName string
	Amount       decimal.Decimal
}

// AbsAmount returns the transaction amount stripped of sign. Split
// reconciliation always operates on the absolute value.
func (t *Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// Assignment is a committed apportionment of part of a transaction's amount
// to one category.
type Assignment struct {
	CategoryID int64
	Amount     decimal.Decimal
}
