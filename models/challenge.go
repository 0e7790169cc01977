package models

import (
	"time"
)

// GoalType decides what a challenge counts.
type GoalType string

const (
	GoalReportsCount     GoalType = "reports_count"
	GoalCollectionsCount GoalType = "collections_count"
	GoalWasteCollected   GoalType = "waste_collected" // weight-based, kg
)

// Challenge is a time-bounded goal converting qualifying actions into bonus
// points.
type Challenge struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ChallengeType string    `gorm:"type:varchar(50);not null;default:'individual'" json:"challenge_type"`
	GoalType      GoalType  `gorm:"type:varchar(50);not null" json:"goal_type"`
	GoalAmount    float64   `gorm:"not null" json:"goal_amount"`
	RewardPoints  int       `gorm:"not null" json:"reward_points"`
	StartDate     time.Time `gorm:"not null" json:"start_date"`
	EndDate       time.Time `gorm:"not null;index" json:"end_date"`
	IsActive      bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// ActiveAt reports whether the challenge accepts progress at the given time.
func (c *Challenge) ActiveAt(now time.Time) bool {
	return c.IsActive && !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// ChallengeParticipant is the per-user progress record for one challenge.
// Progress never decreases; once Completed is set the row is terminal.
type ChallengeParticipant struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	ChallengeID string     `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_user" json:"challenge_id"`
	UserID      string     `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_user" json:"user_id"`
	Progress    float64    `gorm:"not null;default:0" json:"progress"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	JoinedAt    time.Time  `gorm:"autoCreateTime" json:"joined_at"`
}
