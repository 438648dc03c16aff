package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Relay clients and the dashboard expect bare JSON numbers for amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// FlexibleString accepts a JSON string or number. The SMS relay is not
// consistent about how it encodes amount, timestamp and the test flag.
type FlexibleString string

func (fs *FlexibleString) UnmarshalJSON(data []byte) error {
	var s string
	var i int64
	var f float64

	if err := json.Unmarshal(data, &s); err == nil {
		*fs = FlexibleString(s)
		return nil
	}

	if err := json.Unmarshal(data, &i); err == nil {
		*fs = FlexibleString(fmt.Sprintf("%d", i))
		return nil
	}

	if err := json.Unmarshal(data, &f); err == nil {
		*fs = FlexibleString(fmt.Sprintf("%g", f))
		return nil
	}

	return fmt.Errorf("unable to parse %s as FlexibleString", string(data))
}

// WebhookPayload is the raw body the relay posts to /mpesa-webhook.
type WebhookPayload struct {
	RawMessage      string         `json:"raw_message"`
	Amount          FlexibleString `json:"amount"`
	Phone           string         `json:"phone"`
	TransactionCode string         `json:"transaction_code"`
	Timestamp       FlexibleString `json:"timestamp"`
	Test            FlexibleString `json:"test"`
}

// PaymentRecord is an accepted payment. TransactionCode is the natural key:
// the ledger holds at most one record per code. Records are never deleted;
// the only mutation after creation is the Processed flag.
type PaymentRecord struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Phone           string          `json:"phone"`
	SenderName      string          `json:"sender_name"`
	TransactionCode string          `json:"transaction_code"`
	RawMessage      string          `json:"raw_message"`
	ReceivedAt      time.Time       `json:"timestamp"`
	Processed       bool            `json:"processed"`
}

// RewardAccount tracks the points claimed for one payment and the artifacts
// redeemed against them. At most one account exists per transaction code.
type RewardAccount struct {
	TransactionCode     string    `json:"transaction_code"`
	Phone               string    `json:"phone"`
	SenderName          string    `json:"sender_name"`
	Points              int64     `json:"points"`
	ClaimedAt           time.Time `json:"claimed_at"`
	UnlockedArtifactIDs []int     `json:"unlocked_artifact_ids"`
}

// Artifact is a catalog item redeemable for points.
type Artifact struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Cost  int64  `json:"cost"`
	Image string `json:"image"`
}
