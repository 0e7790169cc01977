package models

import (
	"time"
)

const (
	NotificationTypeReward            = "reward"
	NotificationTypeChallengeComplete = "challenge_complete"
	NotificationTypeRedemption        = "redemption"
)

// Notification is a user-facing message created as a side effect of rewarding
// and challenge completion.
type Notification struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
