// services/reports_test.go
package services

import (
	"context"
	"testing"

	"waste-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantityKg(t *testing.T) {
	assert.InDelta(t, 3, parseQuantityKg("3 kg"), 1e-9)
	assert.InDelta(t, 2.5, parseQuantityKg("2.5 kg"), 1e-9)
	assert.InDelta(t, 4, parseQuantityKg("about 4 bags"), 1e-9)
	assert.InDelta(t, 10, parseQuantityKg("a few bags"), 1e-9)
	assert.InDelta(t, 10, parseQuantityKg(""), 1e-9)
}

func TestClassifyImage_EmptyImage(t *testing.T) {
	svc := NewReportService(newTestDB(t), &fakeWasteClassifier{payload: testPayload()})
	_, err := svc.ClassifyImage(context.Background(), nil, "image/jpeg")
	assert.ErrorIs(t, err, ErrNotVerifiable)
}

func TestCreateReport_UnitOfWork(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, &fakeWasteClassifier{payload: testPayload()})
	user := createTestUser(t, db, "reporter@example.com")

	// A report-count challenge advances in the same unit of work.
	start, end := activeWindow()
	require.NoError(t, NewChallengeService(db).CreateChallenge(&models.Challenge{
		Title: "Report Drive", GoalType: models.GoalReportsCount, GoalAmount: 3, RewardPoints: 30,
		StartDate: start, EndDate: end, IsActive: true,
	}))

	report, err := svc.CreateReport(user.ID, "Alexanderplatz, Berlin", testPayload(), "https://cdn.example.com/r/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Equal(t, "plastic bottles", report.WasteType)

	balance, err := NewLedgerService(db).Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, ReportRewardPoints, balance)

	var notifCount int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&notifCount).Error)
	assert.EqualValues(t, 1, notifCount)

	var participant models.ChallengeParticipant
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&participant).Error)
	assert.InDelta(t, 1, participant.Progress, 1e-9)
}

func TestCreateReport_InvalidPayloadRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, &fakeWasteClassifier{})
	user := createTestUser(t, db, "invalid@example.com")

	payload := testPayload()
	payload.BinColor = ""
	_, err := svc.CreateReport(user.ID, "somewhere", payload, "")
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Report{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestStartCollection_ExactlyOneWinner(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, &fakeWasteClassifier{})
	reporter := createTestUser(t, db, "r@example.com")
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	report := createTestReport(t, db, reporter.ID, testPayload())

	won, err := svc.StartCollection(report.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusInProgress, won.Status)
	require.NotNil(t, won.CollectorID)
	assert.Equal(t, alice.ID, *won.CollectorID)

	_, err = svc.StartCollection(report.ID, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	// The winning collector re-requesting the claim is a no-op, not an error.
	again, err := svc.StartCollection(report.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusInProgress, again.Status)
}

func TestStartCollection_FinishedTaskNotReclaimable(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, &fakeWasteClassifier{})
	reporter := createTestUser(t, db, "done-r@example.com")
	collector := createTestUser(t, db, "done-c@example.com")
	report := createTestReport(t, db, reporter.ID, testPayload())

	_, err := svc.StartCollection(report.ID, collector.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Report{}).
		Where("id = ?", report.ID).
		Update("status", models.ReportStatusVerified).Error)

	// Once the task is finished, even the winning collector cannot re-claim.
	_, err = svc.StartCollection(report.ID, collector.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestStartCollection_MissingReport(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, &fakeWasteClassifier{})
	_, err := svc.StartCollection("nope", "collector")
	assert.ErrorIs(t, err, ErrReportNotFound)
}
