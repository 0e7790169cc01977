// services/verification.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"waste-rewards-system/models"
	"waste-rewards-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationConfidenceThreshold is the minimum classifier confidence for a
// pass. Strictly greater-than: 0.7 exactly fails.
const VerificationConfidenceThreshold = 0.7

type VerificationService struct {
	DB         *gorm.DB
	Classifier BinClassifier
}

func NewVerificationService(db *gorm.DB, classifier BinClassifier) *VerificationService {
	return &VerificationService{DB: db, Classifier: classifier}
}

// EvaluateCollection is the pure pass/fail decision over the report's stored
// classification, the collector's GPS fix, and the classifier's reading of
// the collector's photo. When the report carries no GPS fix the distance test
// is vacuously true but flagged unchecked in the outcome.
func EvaluateCollection(payload *models.ClassificationPayload, collectorGPS models.GeoPoint, obs *BinVerification) models.VerificationOutcome {
	out := models.VerificationOutcome{
		BinColorDetected: obs.BinColorDetected,
		Confidence:       obs.Confidence,
	}

	out.BinColorMatch = strings.EqualFold(strings.TrimSpace(obs.BinColorDetected), strings.TrimSpace(payload.BinColor))

	if payload.GPSCoordinates != nil {
		out.GPSChecked = true
		out.GPSDistance = utils.HaversineDistance(
			payload.GPSCoordinates.Lat, payload.GPSCoordinates.Lng,
			collectorGPS.Lat, collectorGPS.Lng,
		)
		out.GPSMatch = utils.WithinRadius(out.GPSDistance)
	} else {
		// No reporter GPS recorded: treated as a match, but surfaced as
		// unchecked so the reduced confidence is visible downstream.
		out.GPSMatch = true
	}

	out.Passed = out.BinColorMatch && out.GPSMatch && out.Confidence > VerificationConfidenceThreshold
	return out
}

// VerifyCollection corroborates a collector's evidence against the report's
// recorded classification. Side effects happen only on a pass, inside one
// transaction: the report and collection record flip to verified, the
// collection reward is credited, and challenge progress advances. On a fail
// the negative outcome is recorded for display and nothing else changes; the
// collector may retry with fresh evidence.
func (s *VerificationService) VerifyCollection(ctx context.Context, reportID, collectorID string, image []byte, mimeType, photoURL string, collectorGPS models.GeoPoint) (*models.VerificationOutcome, error) {
	var report models.Report
	if err := s.DB.First(&report, "id = ?", reportID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	if report.Status != models.ReportStatusInProgress {
		return nil, fmt.Errorf("%w: report status is %q, expected %q", ErrNotVerifiable, report.Status, models.ReportStatusInProgress)
	}
	if report.CollectorID == nil || *report.CollectorID != collectorID {
		return nil, ErrNotCollector
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: no bin photo provided", ErrNotVerifiable)
	}
	// Fail fast before any external call when the report never recorded a
	// usable bin color.
	if report.Classification == nil || !report.Classification.HasUsableBinColor() {
		return nil, fmt.Errorf("%w: no bin color recorded in original report", ErrNotVerifiable)
	}

	payload := report.Classification

	vc := BinContext{
		ExpectedColor: payload.BinColor,
		WasteType:     report.WasteType,
		Location:      report.Location,
		ReporterGPS:   payload.GPSCoordinates,
		CollectorGPS:  collectorGPS,
	}
	if payload.GPSCoordinates != nil {
		d := utils.HaversineDistance(
			payload.GPSCoordinates.Lat, payload.GPSCoordinates.Lng,
			collectorGPS.Lat, collectorGPS.Lng,
		)
		vc.GPSDistance = &d
	}

	obs, err := s.Classifier.VerifyBin(ctx, image, mimeType, vc)
	if err != nil {
		return nil, err
	}

	outcome := EvaluateCollection(payload, collectorGPS, obs)

	if !outcome.Passed {
		// Record the negative attempt for display; the task stays claimable
		// by the same collector for another try. Struct-based update so the
		// JSON serializer on the column applies.
		if err := s.DB.Model(&models.Report{}).
			Where("id = ?", report.ID).
			Select("last_verification").
			Updates(&models.Report{LastVerification: &outcome}).Error; err != nil {
			return nil, err
		}
		log.Printf("❌ Verification failed for report %s: color=%q match=%t gps=%t conf=%.2f",
			report.ID, outcome.BinColorDetected, outcome.BinColorMatch, outcome.GPSMatch, outcome.Confidence)
		return &outcome, nil
	}

	quantity := parseQuantityKg(report.Amount)
	rewardPoints := CollectionRewardPoints(quantity)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Conditional update again so a concurrent verify of the same report
		// cannot double-apply the side effects.
		res := tx.Model(&models.Report{}).
			Where("id = ? AND status = ? AND collector_id = ?", report.ID, models.ReportStatusInProgress, collectorID).
			Select("status", "last_verification").
			Updates(&models.Report{
				Status:           models.ReportStatusVerified,
				LastVerification: &outcome,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: report state changed during verification", ErrNotVerifiable)
		}

		collected := &models.CollectedWaste{
			ID:             uuid.NewString(),
			ReportID:       report.ID,
			CollectorID:    collectorID,
			CollectionDate: time.Now(),
			ImageURL:       photoURL,
			Status:         models.CollectedWasteStatusVerified,
			Verification:   &outcome,
		}
		if err := tx.Create(collected).Error; err != nil {
			return err
		}

		if _, err := creditPoints(tx, collectorID, rewardPoints, models.TransactionEarnedCollect,
			"Points earned for collecting waste"); err != nil {
			return err
		}
		if err := createNotification(tx, collectorID,
			fmt.Sprintf("Collection verified! You earned %d points.", rewardPoints),
			models.NotificationTypeReward); err != nil {
			return err
		}
		return advanceChallenges(tx, collectorID, actionCollect, quantity)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Collection verified: report %s by %s (+%d points, %.1f kg)",
		report.ID, collectorID, rewardPoints, quantity)
	return &outcome, nil
}
