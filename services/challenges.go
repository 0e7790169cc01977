// services/challenges.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"waste-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// challengeAction tags what kind of qualifying action is being applied.
type challengeAction string

const (
	actionReport  challengeAction = "report"
	actionCollect challengeAction = "collect"
)

type ChallengeService struct {
	DB *gorm.DB
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{DB: db}
}

// CreateChallenge registers a new time-bounded goal.
func (s *ChallengeService) CreateChallenge(c *models.Challenge) error {
	if c.GoalAmount <= 0 {
		return fmt.Errorf("goal amount must be positive")
	}
	if !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("end date must be after start date")
	}
	switch c.GoalType {
	case models.GoalReportsCount, models.GoalCollectionsCount, models.GoalWasteCollected:
	default:
		return fmt.Errorf("unknown goal type %q", c.GoalType)
	}

	c.ID = uuid.NewString()
	if c.ChallengeType == "" {
		c.ChallengeType = "individual"
	}
	return s.DB.Create(c).Error
}

// ActiveChallenges returns challenges whose active flag is set and whose
// window contains now.
func (s *ChallengeService) ActiveChallenges() ([]models.Challenge, error) {
	now := time.Now()
	var challenges []models.Challenge
	err := s.DB.Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Find(&challenges).Error
	return challenges, err
}

func (s *ChallengeService) AllChallenges() ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.DB.Order("created_at DESC").Find(&challenges).Error
	return challenges, err
}

func (s *ChallengeService) GetChallenge(id string) (*models.Challenge, error) {
	var c models.Challenge
	if err := s.DB.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Join explicitly enrolls a user in a challenge with zero progress.
func (s *ChallengeService) Join(userID, challengeID string) (*models.ChallengeParticipant, error) {
	if _, err := s.GetChallenge(challengeID); err != nil {
		return nil, err
	}

	var existing models.ChallengeParticipant
	err := s.DB.Where("challenge_id = ? AND user_id = ?", challengeID, userID).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyJoined
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	participant := &models.ChallengeParticipant{
		ID:          uuid.NewString(),
		ChallengeID: challengeID,
		UserID:      userID,
	}
	if err := s.DB.Create(participant).Error; err != nil {
		return nil, err
	}
	return participant, nil
}

// UserChallengeView merges challenge data with the user's progress for
// listing.
type UserChallengeView struct {
	models.Challenge
	Progress    float64    `json:"progress"`
	Completed   bool       `json:"completed"`
	JoinedAt    time.Time  `json:"joined_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// UserChallenges returns every challenge the user participates in, with
// progress merged in.
func (s *ChallengeService) UserChallenges(userID string) ([]UserChallengeView, error) {
	var participants []models.ChallengeParticipant
	if err := s.DB.Where("user_id = ?", userID).Find(&participants).Error; err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return []UserChallengeView{}, nil
	}

	ids := make([]string, len(participants))
	byChallenge := make(map[string]models.ChallengeParticipant, len(participants))
	for i, p := range participants {
		ids[i] = p.ChallengeID
		byChallenge[p.ChallengeID] = p
	}

	var challenges []models.Challenge
	if err := s.DB.Where("id IN ?", ids).Find(&challenges).Error; err != nil {
		return nil, err
	}

	views := make([]UserChallengeView, 0, len(challenges))
	for _, c := range challenges {
		p := byChallenge[c.ID]
		views = append(views, UserChallengeView{
			Challenge:   c,
			Progress:    p.Progress,
			Completed:   p.Completed,
			JoinedAt:    p.JoinedAt,
			CompletedAt: p.CompletedAt,
		})
	}
	return views, nil
}

// advanceChallenges applies one qualifying action to every currently active
// challenge it affects. Runs inside the caller's transaction so progress and
// the triggering credit land together or not at all.
//
// weightKg is only consulted for weight-based ("waste_collected") goals.
func advanceChallenges(tx *gorm.DB, userID string, action challengeAction, weightKg float64) error {
	now := time.Now()
	var challenges []models.Challenge
	if err := tx.Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Find(&challenges).Error; err != nil {
		return err
	}

	for _, c := range challenges {
		var increment float64
		switch {
		case action == actionReport && c.GoalType == models.GoalReportsCount:
			increment = 1
		case action == actionCollect && c.GoalType == models.GoalCollectionsCount:
			increment = 1
		case action == actionCollect && c.GoalType == models.GoalWasteCollected && weightKg > 0:
			increment = weightKg
		default:
			continue
		}

		if err := applyChallengeProgress(tx, userID, &c, increment); err != nil {
			return fmt.Errorf("challenge %s: %w", c.ID, err)
		}
	}
	return nil
}

// applyChallengeProgress increments one participant row, auto-joining on
// first qualifying action. Completed rows are terminal: progress freezes at
// the recorded value and the payout never repeats.
func applyChallengeProgress(tx *gorm.DB, userID string, c *models.Challenge, increment float64) error {
	var participant models.ChallengeParticipant
	err := tx.Where("challenge_id = ? AND user_id = ?", c.ID, userID).First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		participant = models.ChallengeParticipant{
			ID:          uuid.NewString(),
			ChallengeID: c.ID,
			UserID:      userID,
		}
		if err := tx.Create(&participant).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if participant.Completed {
		return nil
	}

	participant.Progress += increment
	if participant.Progress >= c.GoalAmount {
		now := time.Now()
		participant.Completed = true
		participant.CompletedAt = &now
	}
	if err := tx.Save(&participant).Error; err != nil {
		return err
	}

	if !participant.Completed {
		return nil
	}

	// At-most-once payout: we only get here on the transition into the
	// terminal state.
	if _, err := creditPoints(tx, userID, c.RewardPoints, models.TransactionEarnedCollect,
		fmt.Sprintf("Completed challenge: %s", c.Title)); err != nil {
		return err
	}
	if err := createNotification(tx, userID,
		fmt.Sprintf("Congratulations! You completed %q and earned %d points!", c.Title, c.RewardPoints),
		models.NotificationTypeChallengeComplete); err != nil {
		return err
	}

	log.Printf("🏆 Challenge completed: %s by %s (+%d points)", c.Title, userID, c.RewardPoints)
	return nil
}
