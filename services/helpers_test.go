// services/helpers_test.go
package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"waste-rewards-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One shared in-memory database per test, isolated by name so parallel
	// tests never see each other's rows.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.CollectedWaste{},
		&models.Transaction{},
		&models.Reward{},
		&models.Challenge{},
		&models.ChallengeParticipant{},
		&models.Notification{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  "Test User",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestReport(t *testing.T, db *gorm.DB, userID string, payload *models.ClassificationPayload) *models.Report {
	t.Helper()
	report := &models.Report{
		ID:             uuid.NewString(),
		UserID:         userID,
		Location:       "Bahnhofstrasse 12, Berlin",
		WasteType:      payload.WasteType,
		Amount:         payload.Quantity,
		Classification: payload,
		Status:         models.ReportStatusPending,
	}
	require.NoError(t, db.Create(report).Error)
	return report
}

func testPayload() *models.ClassificationPayload {
	return &models.ClassificationPayload{
		WasteType:  "plastic bottles",
		Quantity:   "3 kg",
		Confidence: 0.92,
		BinColor:   "blue",
		GPSCoordinates: &models.GeoPoint{
			Lat:      52.5200,
			Lng:      13.4050,
			Accuracy: 8,
		},
	}
}

// fakeBinClassifier returns a canned observation, recording the context it
// was asked about.
type fakeBinClassifier struct {
	result   *BinVerification
	err      error
	lastCtx  BinContext
	calls int
}

func (f *fakeBinClassifier) VerifyBin(_ context.Context, _ []byte, _ string, vc BinContext) (*BinVerification, error) {
	f.lastCtx = vc
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeWasteClassifier returns a canned classification payload.
type fakeWasteClassifier struct {
	payload *models.ClassificationPayload
	err     error
}

func (f *fakeWasteClassifier) ClassifyWaste(_ context.Context, _ []byte, _ string) (*models.ClassificationPayload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func activeWindow() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(24 * time.Hour)
}
