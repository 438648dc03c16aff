package services

import (
	"log"

	"github.com/shopspring/decimal"

	"github.com/Gymnott1/mpesa-simple-node-server/database"
	"github.com/Gymnott1/mpesa-simple-node-server/models"
)

// UnlockRule maps an exact payment amount to an item granted directly to the
// payer's phone. This channel is independent of the points system: no claim
// step, keyed by phone.
type UnlockRule struct {
	Amount decimal.Decimal
	ItemID string
}

// Price-list rules. Amounts not in the table are a no-op, not an error.
var unlockRules = []UnlockRule{
	{Amount: decimal.NewFromInt(100), ItemID: "song_id_123"},
	{Amount: decimal.NewFromInt(200), ItemID: "album_id_456"},
}

// UnlockFunc delivers an entitlement to a phone number. Swappable so tests
// and future delivery channels (SMS with a download link, access tokens) can
// hook in. The default just records the grant in the log.
var UnlockFunc = func(phone, itemID string) {
	log.Printf("✅ Unlocked %s for %s", itemID, phone)
}

// ProcessPayment evaluates the unlock rules for a newly recorded payment and
// marks it processed. The ingestion endpoint calls this exactly once per
// payment; duplicate deliveries never reach it.
func ProcessPayment(p models.PaymentRecord) error {
	log.Printf("Processing payment: %s", p.TransactionCode)
	for _, rule := range unlockRules {
		if p.Amount.Equal(rule.Amount) {
			UnlockFunc(p.Phone, rule.ItemID)
		}
	}
	return database.Payments.MarkProcessed(p.TransactionCode)
}
