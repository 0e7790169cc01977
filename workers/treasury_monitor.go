// workers/treasury_monitor.go
package workers

import (
	"context"
	"log"
	"math/big"
	"sync"
	"time"

	"waste-rewards-system/services"
)

// TreasuryMonitor polls the payout wallet's Sepolia balance so operators get
// warned before redemptions start failing with insufficient treasury funds.
type TreasuryMonitor struct {
	treasury *services.SepoliaTreasury
	interval time.Duration

	mu          sync.RWMutex
	lastBalance *big.Int
	lastChecked time.Time
}

func NewTreasuryMonitor(treasury *services.SepoliaTreasury) *TreasuryMonitor {
	return &TreasuryMonitor{
		treasury: treasury,
		interval: 5 * time.Minute,
	}
}

func (w *TreasuryMonitor) Start(ctx context.Context) {
	log.Println("🔁 Starting Treasury Monitor (Sepolia balance polling)…")
	go w.run(ctx)
}

func (w *TreasuryMonitor) run(ctx context.Context) {
	w.check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Treasury Monitor stopped.")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// lowWaterMarkWei is 0.01 ETH, enough for roughly 1,000 points of payouts.
var lowWaterMarkWei = new(big.Int).Mul(big.NewInt(10_000_000), big.NewInt(1_000_000_000))

func (w *TreasuryMonitor) check(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	balance, err := w.treasury.Balance(checkCtx)
	if err != nil {
		log.Printf("⚠️ Treasury balance check failed: %v", err)
		return
	}

	w.mu.Lock()
	w.lastBalance = balance
	w.lastChecked = time.Now()
	w.mu.Unlock()

	eth := new(big.Float).Quo(new(big.Float).SetInt(balance), big.NewFloat(1e18))
	if balance.Cmp(lowWaterMarkWei) < 0 {
		log.Printf("🚨 Treasury %s is low: %s ETH", w.treasury.Address(), eth.Text('f', 6))
	} else {
		log.Printf("💰 Treasury %s balance: %s ETH", w.treasury.Address(), eth.Text('f', 6))
	}
}

// Snapshot returns the last observed balance, or nil if no check has
// succeeded yet.
func (w *TreasuryMonitor) Snapshot() (*big.Int, time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.lastBalance == nil {
		return nil, w.lastChecked
	}
	return new(big.Int).Set(w.lastBalance), w.lastChecked
}
