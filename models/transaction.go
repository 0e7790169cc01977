package models

import (
	"strings"
	"time"
)

// TransactionType tags a ledger entry. The sign of the amount is implied by
// the type; amounts are always stored positive.
type TransactionType string

const (
	TransactionEarnedReport  TransactionType = "earned_report"
	TransactionEarnedCollect TransactionType = "earned_collect"
	TransactionRedeemed      TransactionType = "redeemed"
)

// Earned reports whether this type adds to the balance.
func (t TransactionType) Earned() bool {
	return strings.HasPrefix(string(t), "earned")
}

// Transaction is an append-only ledger entry. Rows are immutable once
// created; balances are always derived by summing, never stored.
type Transaction struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string          `gorm:"type:uuid;index;not null" json:"user_id"`
	Type        TransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Amount      int             `gorm:"not null;check:amount > 0" json:"amount"`
	Description string          `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time       `json:"date" gorm:"autoCreateTime;index"`
}
