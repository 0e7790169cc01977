// services/challenges_test.go
package services

import (
	"testing"
	"time"

	"waste-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestChallenge(t *testing.T, svc *ChallengeService, goalType models.GoalType, goal float64, rewardPoints int) *models.Challenge {
	t.Helper()
	start, end := activeWindow()
	c := &models.Challenge{
		Title:        "Neighborhood Cleanup",
		Description:  "Pitch in this week",
		GoalType:     goalType,
		GoalAmount:   goal,
		RewardPoints: rewardPoints,
		StartDate:    start,
		EndDate:      end,
		IsActive:     true,
	}
	require.NoError(t, svc.CreateChallenge(c))
	return c
}

func TestCreateChallenge_Validation(t *testing.T) {
	svc := NewChallengeService(newTestDB(t))
	start, end := activeWindow()

	bad := &models.Challenge{Title: "x", GoalType: models.GoalReportsCount, GoalAmount: 0, StartDate: start, EndDate: end}
	assert.Error(t, svc.CreateChallenge(bad))

	bad = &models.Challenge{Title: "x", GoalType: models.GoalReportsCount, GoalAmount: 5, StartDate: end, EndDate: start}
	assert.Error(t, svc.CreateChallenge(bad))

	bad = &models.Challenge{Title: "x", GoalType: "push_ups", GoalAmount: 5, StartDate: start, EndDate: end}
	assert.Error(t, svc.CreateChallenge(bad))
}

func TestJoin_DuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)
	user := createTestUser(t, db, "joiner@example.com")
	c := createTestChallenge(t, svc, models.GoalReportsCount, 5, 100)

	_, err := svc.Join(user.ID, c.ID)
	require.NoError(t, err)

	_, err = svc.Join(user.ID, c.ID)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = svc.Join(user.ID, "missing-challenge")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestChallengeProgress_AutoJoinAndSinglePayout(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)
	user := createTestUser(t, db, "progress@example.com")
	c := createTestChallenge(t, svc, models.GoalReportsCount, 5, 100)

	// Five qualifying actions complete the goal; the first one auto-joins.
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return advanceChallenges(tx, user.ID, actionReport, 0)
		}))
	}

	var participant models.ChallengeParticipant
	require.NoError(t, db.Where("challenge_id = ? AND user_id = ?", c.ID, user.ID).First(&participant).Error)
	assert.True(t, participant.Completed)
	require.NotNil(t, participant.CompletedAt)
	assert.InDelta(t, 5, participant.Progress, 1e-9)

	balance, err := NewLedgerService(db).Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, balance)

	// A sixth action neither moves progress nor pays again.
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return advanceChallenges(tx, user.ID, actionReport, 0)
	}))
	require.NoError(t, db.Where("id = ?", participant.ID).First(&participant).Error)
	assert.InDelta(t, 5, participant.Progress, 1e-9)

	balance, err = NewLedgerService(db).Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, balance)
}

func TestChallengeProgress_WeightGoal(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)
	user := createTestUser(t, db, "weight@example.com")
	c := createTestChallenge(t, svc, models.GoalWasteCollected, 20, 50)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return advanceChallenges(tx, user.ID, actionCollect, 12.5)
	}))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return advanceChallenges(tx, user.ID, actionCollect, 8)
	}))

	var participant models.ChallengeParticipant
	require.NoError(t, db.Where("challenge_id = ? AND user_id = ?", c.ID, user.ID).First(&participant).Error)
	assert.True(t, participant.Completed)
	assert.InDelta(t, 20.5, participant.Progress, 1e-9)

	// Reports do not advance weight goals.
	user2 := createTestUser(t, db, "weight2@example.com")
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return advanceChallenges(tx, user2.ID, actionReport, 0)
	}))
	err := db.Where("challenge_id = ? AND user_id = ?", c.ID, user2.ID).First(&participant).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestChallengeProgress_InactiveChallengeFrozen(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)
	user := createTestUser(t, db, "frozen@example.com")
	c := createTestChallenge(t, svc, models.GoalCollectionsCount, 3, 30)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return advanceChallenges(tx, user.ID, actionCollect, 5)
	}))

	// Deactivate; further actions no longer move progress.
	require.NoError(t, db.Model(&models.Challenge{}).Where("id = ?", c.ID).Update("is_active", false).Error)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return advanceChallenges(tx, user.ID, actionCollect, 5)
	}))

	var participant models.ChallengeParticipant
	require.NoError(t, db.Where("challenge_id = ? AND user_id = ?", c.ID, user.ID).First(&participant).Error)
	assert.InDelta(t, 1, participant.Progress, 1e-9)
	assert.False(t, participant.Completed)
}

func TestChallengeProgress_ExpiredWindowFrozen(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)
	user := createTestUser(t, db, "expired@example.com")

	c := &models.Challenge{
		Title:        "Last Month",
		GoalType:     models.GoalReportsCount,
		GoalAmount:   3,
		RewardPoints: 30,
		StartDate:    time.Now().Add(-48 * time.Hour),
		EndDate:      time.Now().Add(-24 * time.Hour),
		IsActive:     true,
	}
	require.NoError(t, svc.CreateChallenge(c))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return advanceChallenges(tx, user.ID, actionReport, 0)
	}))

	var count int64
	require.NoError(t, db.Model(&models.ChallengeParticipant{}).Where("challenge_id = ?", c.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestChallengeActiveAt(t *testing.T) {
	start, end := activeWindow()
	c := models.Challenge{StartDate: start, EndDate: end, IsActive: true}

	assert.True(t, c.ActiveAt(time.Now()))
	assert.False(t, c.ActiveAt(start.Add(-time.Minute)))
	assert.False(t, c.ActiveAt(end.Add(time.Minute)))

	c.IsActive = false
	assert.False(t, c.ActiveAt(time.Now()))
}

func TestUserChallenges_MergesProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)
	user := createTestUser(t, db, "views@example.com")
	c := createTestChallenge(t, svc, models.GoalReportsCount, 10, 100)

	_, err := svc.Join(user.ID, c.ID)
	require.NoError(t, err)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return advanceChallenges(tx, user.ID, actionReport, 0)
	}))

	views, err := svc.UserChallenges(user.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, c.ID, views[0].ID)
	assert.InDelta(t, 1, views[0].Progress, 1e-9)
	assert.False(t, views[0].Completed)
}
