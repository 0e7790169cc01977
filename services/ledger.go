// services/ledger.go
package services

import (
	"fmt"
	"log"

	"waste-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Point policy: a flat amount for reporting, a quantity-scaled amount with a
// floor for verified collections.
const ReportRewardPoints = 10
const CollectionRewardFloor = 10

// CollectionRewardPoints computes the credit for a verified collection from
// the declared waste quantity in kg.
func CollectionRewardPoints(quantityKg float64) int {
	points := int(quantityKg)
	if points < CollectionRewardFloor {
		return CollectionRewardFloor
	}
	return points
}

// LedgerService owns the append-only transaction log and the derived point
// balance.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// creditPoints appends an earned transaction and bumps the user's
// denormalized point pool. Runs inside the caller's transaction so the credit
// lands together with whatever triggered it.
func creditPoints(tx *gorm.DB, userID string, amount int, txType models.TransactionType, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	if !txType.Earned() {
		return nil, fmt.Errorf("credit requires an earned transaction type, got %q", txType)
	}

	entry := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}

	if err := bumpPointPool(tx, userID, amount); err != nil {
		return nil, err
	}

	log.Printf("💰 Credited %d points to %s (%s)", amount, userID, description)
	return entry, nil
}

// debitPoints appends a redeemed transaction. The projected balance is
// recomputed inside the transaction and the debit is rejected outright if it
// would go negative; callers never get to over-redeem.
func debitPoints(tx *gorm.DB, userID string, amount int, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	balance, err := rawBalance(tx, userID)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, ErrInsufficientBalance
	}

	entry := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        models.TransactionRedeemed,
		Amount:      amount,
		Description: description,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}

	if err := bumpPointPool(tx, userID, -amount); err != nil {
		return nil, err
	}

	log.Printf("💸 Debited %d points from %s (%s)", amount, userID, description)
	return entry, nil
}

// rawBalance sums the user's complete transaction history: earned minus
// redeemed, unclamped.
func rawBalance(tx *gorm.DB, userID string) (int, error) {
	type row struct {
		Type  models.TransactionType
		Total int
	}
	var rows []row
	err := tx.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	balance := 0
	for _, r := range rows {
		if r.Type.Earned() {
			balance += r.Total
		} else {
			balance -= r.Total
		}
	}
	return balance, nil
}

// bumpPointPool keeps the denormalized Reward pool row in step with the
// ledger. Display-only; the ledger stays authoritative.
func bumpPointPool(tx *gorm.DB, userID string, delta int) error {
	pool, err := getOrCreatePointPool(tx, userID)
	if err != nil {
		return err
	}
	pool.Points += delta
	if pool.Points < 0 {
		pool.Points = 0
	}
	return tx.Save(pool).Error
}

func getOrCreatePointPool(tx *gorm.DB, userID string) (*models.Reward, error) {
	var pool models.Reward
	err := tx.Where("user_id = ?", userID).First(&pool).Error
	if err == gorm.ErrRecordNotFound {
		pool = models.Reward{
			ID:             uuid.NewString(),
			UserID:         &userID,
			Name:           "Point Pool",
			CollectionInfo: "Points earned from reporting and collecting waste",
			Points:         0,
			Level:          1,
			IsAvailable:    true,
		}
		if err := tx.Create(&pool).Error; err != nil {
			return nil, err
		}
		return &pool, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// Credit appends an earned transaction as its own unit of work.
func (s *LedgerService) Credit(userID string, amount int, txType models.TransactionType, description string) (*models.Transaction, error) {
	var entry *models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = creditPoints(tx, userID, amount, txType, description)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Debit appends a redeemed transaction as its own unit of work, enforcing a
// non-negative projected balance.
func (s *LedgerService) Debit(userID string, amount int, description string) (*models.Transaction, error) {
	var entry *models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = debitPoints(tx, userID, amount, description)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Balance returns the user's displayable balance: the full-history sum,
// clamped at zero at read time.
func (s *LedgerService) Balance(userID string) (int, error) {
	balance, err := rawBalance(s.DB, userID)
	if err != nil {
		return 0, err
	}
	if balance < 0 {
		balance = 0
	}
	return balance, nil
}

// RecentTransactions returns the newest ledger entries for display.
func (s *LedgerService) RecentTransactions(userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var entries []models.Transaction
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// createNotification records a user-facing message inside the caller's
// transaction.
func createNotification(tx *gorm.DB, userID, message, notificationType string) error {
	return tx.Create(&models.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Message: message,
		Type:    notificationType,
	}).Error
}
