// services/redemption.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"waste-rewards-system/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type RedemptionService struct {
	DB   *gorm.DB
	Rail TokenSender
}

func NewRedemptionService(db *gorm.DB, rail TokenSender) *RedemptionService {
	return &RedemptionService{DB: db, Rail: rail}
}

// CreateCatalogReward adds a redeemable item to the catalog. Points is the
// redemption cost.
func (s *RedemptionService) CreateCatalogReward(name, description, collectionInfo string, cost int) (*models.Reward, error) {
	if cost <= 0 {
		return nil, fmt.Errorf("reward cost must be positive, got %d", cost)
	}
	reward := &models.Reward{
		ID:             uuid.NewString(),
		Name:           name,
		Slug:           slug.Make(name),
		Description:    description,
		CollectionInfo: collectionInfo,
		Points:         cost,
		Level:          1,
		IsAvailable:    true,
	}
	if err := s.DB.Create(reward).Error; err != nil {
		return nil, err
	}
	return reward, nil
}

// CatalogRewards lists redeemable catalog items (rows with no owning user).
func (s *RedemptionService) CatalogRewards() ([]models.Reward, error) {
	var rewards []models.Reward
	err := s.DB.Where("user_id IS NULL AND is_available = ?", true).
		Order("points ASC").
		Find(&rewards).Error
	return rewards, err
}

// RedeemCatalogReward spends points on a catalog item. Debit and notification
// land in one transaction; an insufficient balance rejects the whole thing
// with no mutation.
func (s *RedemptionService) RedeemCatalogReward(userID, rewardID string) (*models.Transaction, error) {
	var reward models.Reward
	if err := s.DB.Where("id = ? AND user_id IS NULL AND is_available = ?", rewardID, true).
		First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}

	var entry *models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = debitPoints(tx, userID, reward.Points, fmt.Sprintf("Redeemed: %s", reward.Name))
		if txErr != nil {
			return txErr
		}
		return createNotification(tx, userID,
			fmt.Sprintf("You have redeemed %q for %d points.", reward.Name, reward.Points),
			models.NotificationTypeRedemption)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎁 Reward redeemed: %s by %s (%d points)", reward.Name, userID, reward.Points)
	return entry, nil
}

// RedeemToWallet converts the user's entire point balance to testnet ETH.
// The address format and a positive balance are checked up front; the rail is
// called before the ledger is touched, so a rail failure leaves the ledger
// unchanged.
func (s *RedemptionService) RedeemToWallet(ctx context.Context, userID, walletAddress string) (*TransferResult, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, ErrInvalidAddress
	}

	balance, err := rawBalance(s.DB, userID)
	if err != nil {
		return nil, err
	}
	if balance <= 0 {
		return nil, ErrInsufficientBalance
	}

	result, err := s.Rail.SendTokens(ctx, walletAddress, balance)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if _, txErr := debitPoints(tx, userID, balance,
			fmt.Sprintf("Redeemed %d points for %s ETH (tx %s)", balance, result.AmountEth, result.TxHash)); txErr != nil {
			return txErr
		}
		return createNotification(tx, userID,
			fmt.Sprintf("%s ETH sent to your wallet. Transaction: %s", result.AmountEth, TransactionURL(result.TxHash)),
			models.NotificationTypeRedemption)
	})
	if err != nil {
		// The rail already paid out; the debit failing here is an
		// inconsistency worth shouting about.
		log.Printf("🚨 Ledger debit failed after on-chain payout (user %s, tx %s): %v", userID, result.TxHash, err)
		return nil, err
	}

	log.Printf("⛓️  Wallet redemption: %s redeemed %d points → %s ETH (tx %s)",
		userID, balance, result.AmountEth, result.TxHash)
	return result, nil
}

// LeaderboardEntry is one row of the point-pool leaderboard.
type LeaderboardEntry struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Points   int    `json:"points"`
	Level    int    `json:"level"`
}

// Leaderboard lists user point pools ordered by points.
func (s *RedemptionService) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var entries []LeaderboardEntry
	err := s.DB.Raw(`
		SELECT r.user_id, u.name AS user_name, r.points, r.level
		FROM rewards r
		INNER JOIN users u ON u.id = r.user_id
		WHERE r.user_id IS NOT NULL
		ORDER BY r.points DESC
		LIMIT ?
	`, limit).Scan(&entries).Error
	return entries, err
}
