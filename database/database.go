package database

import (
	"fmt"
	"log"
	"path/filepath"
)

// Package-level ledger handles, set by Open. The ingestion endpoint is the
// only writer of Payments; the reward endpoints are the only writers of
// Rewards.
var (
	Payments *PaymentLedger
	Rewards  *RewardLedger
)

const (
	paymentsLogName = "payments.log"
	rewardsLogName  = "rewards.log"
)

// Open replays the append-only logs under dataDir to rebuild the in-memory
// indices, then keeps the files open for appends.
func Open(dataDir string) error {
	if dataDir == "" {
		dataDir = "."
	}

	payments, err := openPaymentLedger(filepath.Join(dataDir, paymentsLogName))
	if err != nil {
		return fmt.Errorf("open payment ledger: %w", err)
	}

	rewards, err := openRewardLedger(filepath.Join(dataDir, rewardsLogName))
	if err != nil {
		payments.close()
		return fmt.Errorf("open reward ledger: %w", err)
	}

	Payments = payments
	Rewards = rewards
	log.Printf("✅ Ledgers loaded: %d payments, %d reward accounts", Payments.Count(), Rewards.Count())
	return nil
}

// Close releases the log files. Every write is synced before the caller is
// acknowledged, so there is nothing to flush; the in-memory indices stay
// readable and any further append fails loudly.
func Close() {
	if Payments != nil {
		Payments.close()
	}
	if Rewards != nil {
		Rewards.close()
	}
}
