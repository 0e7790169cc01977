package models

import (
	"time"
)

// User is a minimal identity record. Authentication happens upstream at the
// gateway; we only persist who reported and who collected.
type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
