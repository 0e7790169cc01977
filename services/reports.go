// services/reports.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"

	"waste-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportService struct {
	DB         *gorm.DB
	Classifier WasteClassifier
}

func NewReportService(db *gorm.DB, classifier WasteClassifier) *ReportService {
	return &ReportService{DB: db, Classifier: classifier}
}

// ClassifyImage runs the reporter's photo through the external classifier.
// A failed or unparseable attempt surfaces as an error; the user restarts
// the whole classification step, nothing partial is kept.
func (s *ReportService) ClassifyImage(ctx context.Context, image []byte, mimeType string) (*models.ClassificationPayload, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: no image provided", ErrNotVerifiable)
	}
	return s.Classifier.ClassifyWaste(ctx, image, mimeType)
}

// CreateReport records a waste sighting and, in the same unit of work,
// credits the flat reporting reward, writes the ledger entry and
// notification, and advances any active report-count challenges.
func (s *ReportService) CreateReport(userID, location string, payload *models.ClassificationPayload, imageURL string) (*models.Report, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:             uuid.NewString(),
		UserID:         userID,
		Location:       location,
		WasteType:      payload.WasteType,
		Amount:         payload.Quantity,
		ImageURL:       imageURL,
		Classification: payload,
		Status:         models.ReportStatusPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		if _, err := creditPoints(tx, userID, ReportRewardPoints, models.TransactionEarnedReport,
			"Points earned for reporting waste"); err != nil {
			return err
		}
		if err := createNotification(tx, userID,
			fmt.Sprintf("You've earned %d points for reporting waste!", ReportRewardPoints),
			models.NotificationTypeReward); err != nil {
			return err
		}
		return advanceChallenges(tx, userID, actionReport, 0)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📝 Report created: %s by %s (%s at %s)", report.ID, userID, report.WasteType, location)
	return report, nil
}

// StartCollection claims a pending report for a collector. The transition is
// a conditional update on the current status so two racing collectors cannot
// both win: exactly one row update succeeds, the loser gets ErrAlreadyClaimed.
func (s *ReportService) StartCollection(reportID, collectorID string) (*models.Report, error) {
	res := s.DB.Model(&models.Report{}).
		Where("id = ? AND status = ?", reportID, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":       models.ReportStatusInProgress,
			"collector_id": collectorID,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		var report models.Report
		if err := s.DB.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrReportNotFound
			}
			return nil, err
		}
		if report.Status == models.ReportStatusInProgress &&
			report.CollectorID != nil && *report.CollectorID == collectorID {
			// Same collector re-requesting a still-open claim is a no-op.
			return &report, nil
		}
		return nil, ErrAlreadyClaimed
	}

	var report models.Report
	if err := s.DB.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, err
	}
	log.Printf("🚛 Collection started: report %s claimed by %s", reportID, collectorID)
	return &report, nil
}

func (s *ReportService) GetReport(reportID string) (*models.Report, error) {
	var report models.Report
	if err := s.DB.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// CollectionTasks lists reports for the collector task board.
func (s *ReportService) CollectionTasks(limit int) ([]models.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var reports []models.Report
	err := s.DB.Order("created_at DESC").Limit(limit).Find(&reports).Error
	return reports, err
}

func (s *ReportService) PendingReports() ([]models.Report, error) {
	var reports []models.Report
	err := s.DB.Where("status = ?", models.ReportStatusPending).Find(&reports).Error
	return reports, err
}

func (s *ReportService) RecentReports(limit int) ([]models.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var reports []models.Report
	err := s.DB.Order("created_at DESC").Limit(limit).Find(&reports).Error
	return reports, err
}

func (s *ReportService) ReportsByUser(userID string) ([]models.Report, error) {
	var reports []models.Report
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&reports).Error
	return reports, err
}

var quantityRe = regexp.MustCompile(`\d+(\.\d+)?`)

// parseQuantityKg pulls the leading number out of a declared quantity string
// like "2.5 kg" or "3 bags". Falls back to 10 when nothing numeric is found,
// matching the reward floor.
func parseQuantityKg(amount string) float64 {
	m := quantityRe.FindString(amount)
	if m == "" {
		return 10
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 10
	}
	return v
}
