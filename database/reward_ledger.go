package database

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Gymnott1/mpesa-simple-node-server/models"
)

// Fixed conversion rate: 1 point per 0.5 KES, fractions dropped.
var pointsRate = decimal.NewFromInt(2)

// PointsFor converts a payment amount into claimable points.
func PointsFor(amount decimal.Decimal) int64 {
	return amount.Mul(pointsRate).Floor().IntPart()
}

// RewardLedger owns the reward accounts, one per claimed transaction code.
// State machine per code: unclaimed → claimed → any number of redemptions.
type RewardLedger struct {
	mu     sync.RWMutex
	byCode map[string]*models.RewardAccount
	log    *appendLog
}

func openRewardLedger(path string) (*RewardLedger, error) {
	l := &RewardLedger{byCode: make(map[string]*models.RewardAccount)}

	err := replayLog(path, func(line []byte) error {
		var acct models.RewardAccount
		if err := json.Unmarshal(line, &acct); err != nil {
			return err
		}
		if acct.UnlockedArtifactIDs == nil {
			acct.UnlockedArtifactIDs = []int{}
		}
		if existing, ok := l.byCode[acct.TransactionCode]; ok {
			*existing = acct
			return nil
		}
		stored := acct
		l.byCode[stored.TransactionCode] = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log, err = openAppendLog(path)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (l *RewardLedger) close() {
	_ = l.log.Close()
}

// Claim converts a recorded payment into points, once. A second claim for
// the same transaction code returns ErrAlreadyClaimed and changes nothing.
func (l *RewardLedger) Claim(p models.PaymentRecord) (models.RewardAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byCode[p.TransactionCode]; ok {
		return models.RewardAccount{}, ErrAlreadyClaimed
	}

	acct := models.RewardAccount{
		TransactionCode:     p.TransactionCode,
		Phone:               p.Phone,
		SenderName:          p.SenderName,
		Points:              PointsFor(p.Amount),
		ClaimedAt:           time.Now(),
		UnlockedArtifactIDs: []int{},
	}
	if err := l.log.Append(acct); err != nil {
		return models.RewardAccount{}, err
	}

	stored := acct
	l.byCode[stored.TransactionCode] = &stored
	return acct, nil
}

// Unlock debits the artifact cost and adds the artifact to the account's
// unlocked set. Both mutations land together or not at all: the snapshot is
// appended before the in-memory account is touched, and a failed append
// leaves the account exactly as it was.
func (l *RewardLedger) Unlock(code string, artifact models.Artifact) (models.RewardAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.byCode[code]
	if !ok {
		return models.RewardAccount{}, ErrNotFound
	}
	for _, id := range acct.UnlockedArtifactIDs {
		if id == artifact.ID {
			return models.RewardAccount{}, ErrAlreadyUnlocked
		}
	}
	if acct.Points < artifact.Cost {
		return models.RewardAccount{}, ErrInsufficientPoints
	}

	updated := *acct
	updated.Points = acct.Points - artifact.Cost
	updated.UnlockedArtifactIDs = append(append([]int{}, acct.UnlockedArtifactIDs...), artifact.ID)
	if err := l.log.Append(updated); err != nil {
		return models.RewardAccount{}, err
	}

	*acct = updated
	return updated, nil
}

// Find looks up a reward account by transaction code.
func (l *RewardLedger) Find(code string) (models.RewardAccount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acct, ok := l.byCode[code]
	if !ok {
		return models.RewardAccount{}, ErrNotFound
	}
	return *acct, nil
}

// Count returns the number of claimed accounts.
func (l *RewardLedger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byCode)
}
