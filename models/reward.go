package models

import (
	"time"
)

// Reward doubles as a redeemable catalog item (Name, Points as cost) and a
// user's point-pool row (Points as accumulated display total). Pool rows are
// identified by UserID and kept in sync with the transaction ledger, but the
// ledger stays authoritative for balances.
type Reward struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         *string   `gorm:"type:uuid;index" json:"user_id,omitempty"` // nil for catalog items
	Name           string    `gorm:"not null" json:"name"`
	Slug           string    `gorm:"index" json:"slug,omitempty"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	CollectionInfo string    `gorm:"type:text" json:"collection_info,omitempty"`
	Points         int       `gorm:"not null;default:0" json:"points"`
	Level          int       `gorm:"not null;default:1" json:"level"`
	IsAvailable    bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
