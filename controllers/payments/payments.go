package payments

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Gymnott1/mpesa-simple-node-server/database"
)

const recentLimit = 10

// Check handles GET /check-payment/:transaction_code. Missing codes are a
// structured not_found body, not an HTTP error.
func Check(c *fiber.Ctx) error {
	rec, err := database.Payments.Find(c.Params("transaction_code"))
	if err != nil {
		return c.JSON(fiber.Map{"status": "not_found"})
	}
	return c.JSON(fiber.Map{
		"status":    "found",
		"processed": rec.Processed,
		"amount":    rec.Amount,
	})
}

// List handles GET /payments: every stored payment in insertion order.
func List(c *fiber.Ctx) error {
	recs := database.Payments.List()
	return c.JSON(fiber.Map{
		"total":    len(recs),
		"payments": recs,
	})
}

// Recent handles GET /recent-payments: the last payments, newest first, with
// a display-formatted timestamp.
func Recent(c *fiber.Ctx) error {
	recs := database.Payments.Recent(recentLimit)
	out := make([]fiber.Map, 0, len(recs))
	for _, r := range recs {
		out = append(out, fiber.Map{
			"payment_id":       r.ID,
			"amount":           r.Amount,
			"phone":            r.Phone,
			"sender_name":      r.SenderName,
			"transaction_code": r.TransactionCode,
			"received_at":      r.ReceivedAt.Format("2006-01-02 15:04:05"),
			"processed":        r.Processed,
		})
	}
	return c.JSON(fiber.Map{
		"total":  len(out),
		"recent": out,
	})
}
