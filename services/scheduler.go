// services/scheduler.go
package services

import (
	"log"
	"time"

	"waste-rewards-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartExpirySweeper deactivates challenges whose window has closed. Progress
// already recorded is untouched; the sweep only stops further increments.
func (s *ChallengeService) StartExpirySweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			res := s.DB.Model(&models.Challenge{}).
				Where("is_active = ? AND end_date < ?", true, time.Now()).
				Update("is_active", false)
			if res.Error != nil {
				log.Printf("[Sweeper] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Deactivated %d expired challenge(s)", res.RowsAffected)
			}
		}),
	)
}
