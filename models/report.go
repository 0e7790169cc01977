package models

import (
	"fmt"
	"strings"
	"time"
)

// ReportStatus is the lifecycle state of a waste report.
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusInProgress ReportStatus = "in_progress"
	ReportStatusVerified   ReportStatus = "verified"
)

// GeoPoint is a GPS fix as supplied by the device: coordinates in degrees,
// accuracy in meters.
type GeoPoint struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy"`
}

// VisualDescription holds the free-text scene descriptors the classifier
// produces so collectors can recognize the spot.
type VisualDescription struct {
	BinDetails           string `json:"binDetails"`
	WasteColors          string `json:"wasteColors"`
	Surroundings         string `json:"surroundings"`
	GroundCondition      string `json:"groundCondition"`
	EnvironmentalMarkers string `json:"environmentalMarkers"`
	UniqueIdentifiers    string `json:"uniqueIdentifiers"`
}

// ClassificationPayload is the structured record extracted from the
// classifier's response to the reporter's photo, plus the GPS fix attached
// at capture time. WasteType, Quantity, Confidence and BinColor are required;
// the rest is optional.
type ClassificationPayload struct {
	WasteType         string             `json:"wasteType"`
	Quantity          string             `json:"quantity"`
	Confidence        float64            `json:"confidence"`
	BinColor          string             `json:"binColor"`
	GPSCoordinates    *GeoPoint          `json:"gpsCoordinates,omitempty"`
	VisualDescription *VisualDescription `json:"visualDescription,omitempty"`
}

// Validate enforces the required fields on ingress.
func (p *ClassificationPayload) Validate() error {
	var missing []string
	if strings.TrimSpace(p.WasteType) == "" {
		missing = append(missing, "wasteType")
	}
	if strings.TrimSpace(p.Quantity) == "" {
		missing = append(missing, "quantity")
	}
	if p.Confidence <= 0 || p.Confidence > 1 {
		missing = append(missing, "confidence")
	}
	if strings.TrimSpace(p.BinColor) == "" {
		missing = append(missing, "binColor")
	}
	if len(missing) > 0 {
		return fmt.Errorf("classification payload missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// HasUsableBinColor reports whether the recorded bin color can anchor a
// collection verification. "mixed" is usable; "none"/"unknown" are not.
func (p *ClassificationPayload) HasUsableBinColor() bool {
	c := strings.ToLower(strings.TrimSpace(p.BinColor))
	return c != "" && c != "unknown" && c != "none"
}

// VerificationOutcome is the recorded result of one collection verification
// attempt. GPSChecked is false when the original report carried no GPS fix
// and the distance test was skipped.
type VerificationOutcome struct {
	BinColorDetected string  `json:"binColorDetected"`
	BinColorMatch    bool    `json:"binColorMatch"`
	Confidence       float64 `json:"confidence"`
	GPSChecked       bool    `json:"gpsChecked"`
	GPSDistance      float64 `json:"gpsDistance"`
	GPSMatch         bool    `json:"gpsMatch"`
	Passed           bool    `json:"passed"`
}

// Report is a user-submitted waste sighting.
// CollectorID is set only when the report leaves "pending".
type Report struct {
	ID               string                 `gorm:"primaryKey;type:uuid" json:"id"`
	UserID           string                 `gorm:"type:uuid;index;not null" json:"user_id"`
	Location         string                 `gorm:"not null" json:"location"`
	WasteType        string                 `gorm:"not null" json:"waste_type"`
	Amount           string                 `gorm:"not null" json:"amount"`
	ImageURL         string                 `gorm:"type:text" json:"image_url,omitempty"`
	Classification   *ClassificationPayload `gorm:"serializer:json;type:jsonb" json:"classification,omitempty"`
	Status           ReportStatus           `gorm:"not null;default:'pending';index" json:"status"`
	CollectorID      *string                `gorm:"type:uuid;index" json:"collector_id,omitempty"`
	LastVerification *VerificationOutcome   `gorm:"serializer:json;type:jsonb" json:"last_verification,omitempty"`
	CreatedAt        time.Time              `json:"created_at" gorm:"autoCreateTime"`
}
