package webhook

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Gymnott1/mpesa-simple-node-server/database"
	"github.com/Gymnott1/mpesa-simple-node-server/helpers"
	"github.com/Gymnott1/mpesa-simple-node-server/models"
	"github.com/Gymnott1/mpesa-simple-node-server/services"
)

// Receive handles POST /mpesa-webhook: parse, record, run the auto-unlock
// hook, respond. The relay delivers at-least-once and cannot meaningfully
// retry on rejection, so every malformed or partial payload is acknowledged
// with 200 and an "ignored" status. Only a failed durable write returns 5xx.
func Receive(c *fiber.Ctx) error {
	var payload models.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("⚠️  Unparseable webhook body: %v", err)
		return fragmentResponse(c)
	}

	result := helpers.ParseNotification(payload)
	switch result.Outcome {
	case helpers.OutcomeTestPing:
		log.Println("Test message received successfully!")
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Test received",
		})
	case helpers.OutcomeFragment:
		log.Println("SMS fragment received (incomplete data) - ignoring")
		return fragmentResponse(c)
	}

	rec, created, err := database.Payments.Record(result.Payment)
	if err != nil {
		log.Printf("❌ Failed to persist payment %s: %v", result.Payment.TransactionCode, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "failed to persist payment",
		})
	}

	if created {
		log.Printf("💰 Payment from: %s (%s) - Ksh%s - %s", rec.SenderName, rec.Phone, rec.Amount, rec.TransactionCode)
		if err := services.ProcessPayment(rec); err != nil {
			// The payment itself is already durable at this point.
			log.Printf("⚠️  Failed to mark %s processed: %v", rec.TransactionCode, err)
		}
	} else {
		log.Printf("Duplicate delivery for %s - returning original payment", rec.TransactionCode)
	}

	return c.JSON(fiber.Map{
		"status":     "success",
		"payment_id": rec.ID,
	})
}

func fragmentResponse(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ignored",
		"message": "SMS fragment",
	})
}
