// services/verification_test.go
package services

import (
	"context"
	"testing"

	"waste-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCollection(t *testing.T) {
	payload := testPayload() // blue bin at 52.5200, 13.4050
	nearby := models.GeoPoint{Lat: 52.5203, Lng: 13.4050} // ~33m north
	faraway := models.GeoPoint{Lat: 52.5290, Lng: 13.4050}

	tests := []struct {
		name string
		gps  models.GeoPoint
		obs  BinVerification
		pass bool
	}{
		{"all criteria met", nearby, BinVerification{BinColorDetected: "blue", Confidence: 0.8}, true},
		{"color match is case-insensitive", nearby, BinVerification{BinColorDetected: "Blue", Confidence: 0.8}, true},
		{"wrong color", nearby, BinVerification{BinColorDetected: "green", Confidence: 0.9}, false},
		{"confidence at threshold fails", nearby, BinVerification{BinColorDetected: "blue", Confidence: 0.7}, false},
		{"low confidence", nearby, BinVerification{BinColorDetected: "blue", Confidence: 0.65}, false},
		{"out of radius", faraway, BinVerification{BinColorDetected: "blue", Confidence: 0.9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := EvaluateCollection(payload, tt.gps, &tt.obs)
			assert.Equal(t, tt.pass, out.Passed)
			assert.True(t, out.GPSChecked)
		})
	}
}

func TestEvaluateCollection_NoReporterGPS(t *testing.T) {
	payload := testPayload()
	payload.GPSCoordinates = nil

	out := EvaluateCollection(payload, models.GeoPoint{Lat: 0, Lng: 0}, &BinVerification{
		BinColorDetected: "blue",
		Confidence:       0.9,
	})
	// Vacuously passes the distance test, but flagged unchecked.
	assert.True(t, out.Passed)
	assert.True(t, out.GPSMatch)
	assert.False(t, out.GPSChecked)
	assert.Zero(t, out.GPSDistance)
}

func TestVerifyCollection_PassAppliesAllSideEffects(t *testing.T) {
	db := newTestDB(t)
	reporter := createTestUser(t, db, "vr@example.com")
	collector := createTestUser(t, db, "vc@example.com")

	payload := testPayload()
	report := createTestReport(t, db, reporter.ID, payload)
	reportSvc := NewReportService(db, &fakeWasteClassifier{})
	_, err := reportSvc.StartCollection(report.ID, collector.ID)
	require.NoError(t, err)

	start, end := activeWindow()
	require.NoError(t, NewChallengeService(db).CreateChallenge(&models.Challenge{
		Title: "Collection Drive", GoalType: models.GoalCollectionsCount, GoalAmount: 5, RewardPoints: 50,
		StartDate: start, EndDate: end, IsActive: true,
	}))

	fake := &fakeBinClassifier{result: &BinVerification{BinColorDetected: "blue", Confidence: 0.85}}
	svc := NewVerificationService(db, fake)

	outcome, err := svc.VerifyCollection(context.Background(), report.ID, collector.ID,
		[]byte("jpeg-bytes"), "image/jpeg", "https://cdn.example.com/v/1.jpg",
		models.GeoPoint{Lat: 52.5203, Lng: 13.4050})
	require.NoError(t, err)
	require.True(t, outcome.Passed)

	// The classifier saw the full verification context.
	assert.Equal(t, "blue", fake.lastCtx.ExpectedColor)
	require.NotNil(t, fake.lastCtx.GPSDistance)
	assert.Less(t, *fake.lastCtx.GPSDistance, 100.0)

	var updated models.Report
	require.NoError(t, db.First(&updated, "id = ?", report.ID).Error)
	assert.Equal(t, models.ReportStatusVerified, updated.Status)
	require.NotNil(t, updated.LastVerification)
	assert.True(t, updated.LastVerification.Passed)

	var collected models.CollectedWaste
	require.NoError(t, db.Where("report_id = ?", report.ID).First(&collected).Error)
	assert.Equal(t, collector.ID, collected.CollectorID)
	assert.Equal(t, models.CollectedWasteStatusVerified, collected.Status)
	assert.Equal(t, "https://cdn.example.com/v/1.jpg", collected.ImageURL)
	require.NotNil(t, collected.Verification)
	assert.True(t, collected.Verification.Passed)

	// "3 kg" is below the floor, so the flat floor reward applies.
	balance, err := NewLedgerService(db).Balance(collector.ID)
	require.NoError(t, err)
	assert.Equal(t, CollectionRewardFloor, balance)

	var participant models.ChallengeParticipant
	require.NoError(t, db.Where("user_id = ?", collector.ID).First(&participant).Error)
	assert.InDelta(t, 1, participant.Progress, 1e-9)
}

func TestVerifyCollection_QuantityScaledReward(t *testing.T) {
	db := newTestDB(t)
	reporter := createTestUser(t, db, "qr@example.com")
	collector := createTestUser(t, db, "qc@example.com")

	payload := testPayload()
	payload.Quantity = "25 kg"
	report := createTestReport(t, db, reporter.ID, payload)
	_, err := NewReportService(db, &fakeWasteClassifier{}).StartCollection(report.ID, collector.ID)
	require.NoError(t, err)

	svc := NewVerificationService(db, &fakeBinClassifier{
		result: &BinVerification{BinColorDetected: "blue", Confidence: 0.9},
	})
	outcome, err := svc.VerifyCollection(context.Background(), report.ID, collector.ID,
		[]byte("x"), "image/jpeg", "", models.GeoPoint{Lat: 52.5200, Lng: 13.4050})
	require.NoError(t, err)
	require.True(t, outcome.Passed)

	balance, err := NewLedgerService(db).Balance(collector.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, balance)
}

func TestVerifyCollection_FailRecordsOutcomeOnly(t *testing.T) {
	db := newTestDB(t)
	reporter := createTestUser(t, db, "fr@example.com")
	collector := createTestUser(t, db, "fc@example.com")

	report := createTestReport(t, db, reporter.ID, testPayload())
	_, err := NewReportService(db, &fakeWasteClassifier{}).StartCollection(report.ID, collector.ID)
	require.NoError(t, err)

	svc := NewVerificationService(db, &fakeBinClassifier{
		result: &BinVerification{BinColorDetected: "green", Confidence: 0.9},
	})
	outcome, err := svc.VerifyCollection(context.Background(), report.ID, collector.ID,
		[]byte("x"), "image/jpeg", "", models.GeoPoint{Lat: 52.5200, Lng: 13.4050})
	require.NoError(t, err)
	assert.False(t, outcome.Passed)
	assert.False(t, outcome.BinColorMatch)

	// The negative attempt is recorded; everything else is untouched and the
	// task stays claimable by the same collector.
	var updated models.Report
	require.NoError(t, db.First(&updated, "id = ?", report.ID).Error)
	assert.Equal(t, models.ReportStatusInProgress, updated.Status)
	require.NotNil(t, updated.LastVerification)
	assert.False(t, updated.LastVerification.Passed)

	var count int64
	require.NoError(t, db.Model(&models.CollectedWaste{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	balance, err := NewLedgerService(db).Balance(collector.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestVerifyCollection_Guards(t *testing.T) {
	db := newTestDB(t)
	reporter := createTestUser(t, db, "gr@example.com")
	collector := createTestUser(t, db, "gc@example.com")
	other := createTestUser(t, db, "other@example.com")
	gps := models.GeoPoint{Lat: 52.52, Lng: 13.405}

	svc := NewVerificationService(db, &fakeBinClassifier{
		result: &BinVerification{BinColorDetected: "blue", Confidence: 0.9},
	})

	t.Run("missing report", func(t *testing.T) {
		_, err := svc.VerifyCollection(context.Background(), "missing", collector.ID, []byte("x"), "image/jpeg", "", gps)
		assert.ErrorIs(t, err, ErrReportNotFound)
	})

	t.Run("report not claimed", func(t *testing.T) {
		report := createTestReport(t, db, reporter.ID, testPayload())
		_, err := svc.VerifyCollection(context.Background(), report.ID, collector.ID, []byte("x"), "image/jpeg", "", gps)
		assert.ErrorIs(t, err, ErrNotVerifiable)
	})

	t.Run("wrong collector", func(t *testing.T) {
		report := createTestReport(t, db, reporter.ID, testPayload())
		_, err := NewReportService(db, &fakeWasteClassifier{}).StartCollection(report.ID, collector.ID)
		require.NoError(t, err)
		_, err = svc.VerifyCollection(context.Background(), report.ID, other.ID, []byte("x"), "image/jpeg", "", gps)
		assert.ErrorIs(t, err, ErrNotCollector)
	})

	t.Run("no photo", func(t *testing.T) {
		report := createTestReport(t, db, reporter.ID, testPayload())
		_, err := NewReportService(db, &fakeWasteClassifier{}).StartCollection(report.ID, collector.ID)
		require.NoError(t, err)
		_, err = svc.VerifyCollection(context.Background(), report.ID, collector.ID, nil, "", "", gps)
		assert.ErrorIs(t, err, ErrNotVerifiable)
	})

	t.Run("no usable bin color", func(t *testing.T) {
		payload := testPayload()
		payload.BinColor = "none"
		report := createTestReport(t, db, reporter.ID, payload)
		_, err := NewReportService(db, &fakeWasteClassifier{}).StartCollection(report.ID, collector.ID)
		require.NoError(t, err)

		probe := &fakeBinClassifier{result: &BinVerification{BinColorDetected: "blue", Confidence: 0.9}}
		guarded := NewVerificationService(db, probe)
		_, err = guarded.VerifyCollection(context.Background(), report.ID, collector.ID, []byte("x"), "image/jpeg", "", gps)
		assert.ErrorIs(t, err, ErrNotVerifiable)
		// Rejected before the external call.
		assert.Zero(t, probe.calls)
	})
}
