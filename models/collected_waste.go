package models

import (
	"time"
)

// CollectedWasteStatus for the join record between a report and its collector.
type CollectedWasteStatus string

const (
	CollectedWasteStatusCollected CollectedWasteStatus = "collected"
	CollectedWasteStatusVerified  CollectedWasteStatus = "verified"
)

// CollectedWaste links a Report to the collector who completed it. One row is
// created per successful collection event.
type CollectedWaste struct {
	ID             string               `gorm:"primaryKey;type:uuid" json:"id"`
	ReportID       string               `gorm:"type:uuid;index;not null" json:"report_id"`
	CollectorID    string               `gorm:"type:uuid;index;not null" json:"collector_id"`
	CollectionDate time.Time            `gorm:"not null" json:"collection_date"`
	ImageURL       string               `gorm:"type:text" json:"image_url,omitempty"`
	Status         CollectedWasteStatus `gorm:"type:varchar(20);not null;default:'collected'" json:"status"`
	Verification   *VerificationOutcome `gorm:"serializer:json;type:jsonb" json:"verification,omitempty"`
}
