package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Gymnott1/mpesa-simple-node-server/controllers/payments"
	"github.com/Gymnott1/mpesa-simple-node-server/controllers/rewards"
	"github.com/Gymnott1/mpesa-simple-node-server/controllers/webhook"
)

func Setup(app *fiber.App) {
	// ingestion
	app.Post("/mpesa-webhook", webhook.Receive)

	// payment queries
	app.Get("/check-payment/:transaction_code", payments.Check)
	app.Get("/payments", payments.List)
	app.Get("/recent-payments", payments.Recent)

	// rewards
	app.Post("/claim-points", rewards.ClaimPoints)
	app.Post("/unlock-artifact", rewards.UnlockArtifact)
	app.Get("/user-status/:transaction_code", rewards.UserStatus)
	app.Get("/artifacts", rewards.Artifacts)

	// catch-all for debugging misdirected relay calls
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"available_endpoints": []string{
				"/mpesa-webhook",
				"/check-payment/:transaction_code",
				"/payments",
				"/recent-payments",
				"/claim-points",
				"/unlock-artifact",
				"/user-status/:transaction_code",
				"/artifacts",
			},
		})
	})
}
