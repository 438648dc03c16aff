package database

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/Gymnott1/mpesa-simple-node-server/models"
)

// PaymentLedger is the append-only store of accepted payments, indexed by
// transaction code. The log holds one snapshot per write; replay keeps the
// first-seen insertion order and lets the last snapshot per code win.
type PaymentLedger struct {
	mu      sync.RWMutex
	byCode  map[string]*models.PaymentRecord
	ordered []*models.PaymentRecord
	log     *appendLog
}

func openPaymentLedger(path string) (*PaymentLedger, error) {
	l := &PaymentLedger{byCode: make(map[string]*models.PaymentRecord)}

	err := replayLog(path, func(line []byte) error {
		var rec models.PaymentRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return err
		}
		if existing, ok := l.byCode[rec.TransactionCode]; ok {
			*existing = rec
			return nil
		}
		stored := rec
		l.byCode[stored.TransactionCode] = &stored
		l.ordered = append(l.ordered, &stored)
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

func (l *PaymentLedger) close() {
	_ = l.log.Close()
}

// Record stores a parsed payment and returns it with its assigned id. The
// relay delivers at-least-once: redelivery of a transaction code already in
// the ledger returns the original record with created=false and writes
// nothing. The log append completes before the caller is acknowledged; on
// append failure the index is left untouched.
func (l *PaymentLedger) Record(rec models.PaymentRecord) (models.PaymentRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.byCode[rec.TransactionCode]; ok {
		return *existing, false, nil
	}

	rec.ID = uuid.NewString()
	rec.Processed = false
	if err := l.log.Append(rec); err != nil {
		return models.PaymentRecord{}, false, err
	}

	stored := rec
	l.byCode[stored.TransactionCode] = &stored
	l.ordered = append(l.ordered, &stored)
	return stored, true, nil
}

// Find looks up a payment by transaction code.
func (l *PaymentLedger) Find(code string) (models.PaymentRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.byCode[code]
	if !ok {
		return models.PaymentRecord{}, ErrNotFound
	}
	return *rec, nil
}

// List returns all payments in insertion order.
func (l *PaymentLedger) List() []models.PaymentRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.PaymentRecord, 0, len(l.ordered))
	for _, rec := range l.ordered {
		out = append(out, *rec)
	}
	return out
}

// Recent returns up to n payments, most recent first.
func (l *PaymentLedger) Recent(n int) []models.PaymentRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n > len(l.ordered) {
		n = len(l.ordered)
	}
	out := make([]models.PaymentRecord, 0, n)
	for i := len(l.ordered) - 1; i >= len(l.ordered)-n; i-- {
		out = append(out, *l.ordered[i])
	}
	return out
}

// Count returns the number of stored payments.
func (l *PaymentLedger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ordered)
}

// MarkProcessed flips the processed flag after the auto-unlock hook has run.
// Idempotent: marking an already-processed payment writes nothing.
func (l *PaymentLedger) MarkProcessed(code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.byCode[code]
	if !ok {
		return ErrNotFound
	}
	if rec.Processed {
		return nil
	}

	updated := *rec
	updated.Processed = true
	if err := l.log.Append(updated); err != nil {
		return err
	}
	rec.Processed = true
	return nil
}
