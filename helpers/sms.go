package helpers

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Gymnott1/mpesa-simple-node-server/models"
)

// ParseOutcome classifies a webhook payload.
type ParseOutcome int

const (
	// OutcomeComplete carries a fully extracted payment.
	OutcomeComplete ParseOutcome = iota
	// OutcomeTestPing is a relay connectivity check, acknowledged without
	// touching the ledger.
	OutcomeTestPing
	// OutcomeFragment is a partial SMS the relay forwards before the full
	// message arrives. Acknowledged but never stored.
	OutcomeFragment
)

// ParseResult is the outcome of parsing one notification. Payment is only
// populated for OutcomeComplete; its ID is assigned later by the ledger.
type ParseResult struct {
	Outcome ParseOutcome
	Payment models.PaymentRecord
}

// M-Pesa confirmation texts read "... from JOHN DOE 0712345678 ...": the
// sender name sits between "from" and the 10-digit phone number.
var senderNamePattern = regexp.MustCompile(`from ([A-Za-z\s]+)\s+\d{10}`)

// ExtractSenderName pulls the sender's name out of the raw SMS text.
// Best-effort heuristic: names with digits or punctuation are missed and
// report "unknown". That is acceptable, the name is display metadata only.
func ExtractSenderName(raw string) string {
	m := senderNamePattern.FindStringSubmatch(raw)
	if m == nil {
		return "unknown"
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "unknown"
	}
	return name
}

// ParseNotification turns a relay payload into a payment record, a test ping
// or a fragment. Malformed input always degrades to a fragment; the relay
// cannot meaningfully retry, so nothing here returns an error.
func ParseNotification(p models.WebhookPayload) ParseResult {
	if string(p.Test) == "true" {
		return ParseResult{Outcome: OutcomeTestPing}
	}

	if p.Amount == "" || p.TransactionCode == "" {
		return ParseResult{Outcome: OutcomeFragment}
	}

	amount, err := decimal.NewFromString(string(p.Amount))
	if err != nil || amount.IsNegative() {
		return ParseResult{Outcome: OutcomeFragment}
	}

	phone := p.Phone
	if phone == "" {
		phone = "unknown"
	}

	return ParseResult{
		Outcome: OutcomeComplete,
		Payment: models.PaymentRecord{
			Amount:          amount,
			Phone:           phone,
			SenderName:      ExtractSenderName(p.RawMessage),
			TransactionCode: p.TransactionCode,
			RawMessage:      p.RawMessage,
			ReceivedAt:      parseTimestamp(string(p.Timestamp)),
		},
	}
}

// parseTimestamp accepts RFC3339 or epoch milliseconds (the relay sends
// Date.now() values). Anything else defaults to the arrival time.
func parseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Now()
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(ts, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms)
	}
	return time.Now()
}
