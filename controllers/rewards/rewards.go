package rewards

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Gymnott1/mpesa-simple-node-server/catalog"
	"github.com/Gymnott1/mpesa-simple-node-server/database"
	"github.com/Gymnott1/mpesa-simple-node-server/helpers"
	"github.com/Gymnott1/mpesa-simple-node-server/models"
)

type claimRequest struct {
	TransactionCode string `json:"transaction_code"`
}

type unlockRequest struct {
	TransactionCode string `json:"transaction_code"`
	ArtifactID      int    `json:"artifact_id"`
}

// ClaimPoints handles POST /claim-points: one-time conversion of a recorded
// payment into spendable points.
func ClaimPoints(c *fiber.Ctx) error {
	var req claimRequest
	if err := c.BodyParser(&req); err != nil || req.TransactionCode == "" {
		return helpers.Failure(c, "transaction_code is required")
	}

	payment, err := database.Payments.Find(req.TransactionCode)
	if err != nil {
		return helpers.Failure(c, "payment not found")
	}

	acct, err := database.Rewards.Claim(payment)
	if errors.Is(err, database.ErrAlreadyClaimed) {
		return helpers.Failure(c, "points already claimed for this transaction")
	}
	if err != nil {
		log.Printf("❌ Failed to persist reward account %s: %v", req.TransactionCode, err)
		return helpers.ServerError(c, "failed to persist reward account")
	}

	log.Printf("🎁 %d points claimed for %s (%s)", acct.Points, acct.TransactionCode, acct.SenderName)
	return c.JSON(fiber.Map{
		"success": true,
		"points":  acct.Points,
		"user":    acct,
	})
}

// UnlockArtifact handles POST /unlock-artifact: debit the artifact cost and
// add it to the account's unlocked set.
func UnlockArtifact(c *fiber.Ctx) error {
	var req unlockRequest
	if err := c.BodyParser(&req); err != nil || req.TransactionCode == "" {
		return helpers.Failure(c, "transaction_code is required")
	}

	artifact, ok := catalog.Find(req.ArtifactID)
	if !ok {
		return helpers.Failure(c, "artifact not found")
	}

	acct, err := database.Rewards.Unlock(req.TransactionCode, artifact)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return helpers.Failure(c, "no reward account for this transaction - claim points first")
	case errors.Is(err, database.ErrAlreadyUnlocked):
		return helpers.Failure(c, fmt.Sprintf("%s is already unlocked", artifact.Name))
	case errors.Is(err, database.ErrInsufficientPoints):
		current, _ := database.Rewards.Find(req.TransactionCode)
		return helpers.Failure(c, fmt.Sprintf("insufficient points: %s costs %d, balance is %d", artifact.Name, artifact.Cost, current.Points))
	case err != nil:
		log.Printf("❌ Failed to persist unlock %s/%d: %v", req.TransactionCode, req.ArtifactID, err)
		return helpers.ServerError(c, "failed to persist unlock")
	}

	log.Printf("🔓 %s unlocked for %s (%d points left)", artifact.Name, acct.TransactionCode, acct.Points)
	return c.JSON(fiber.Map{
		"success":          true,
		"artifact":         artifact,
		"remaining_points": acct.Points,
	})
}

// UserStatus handles GET /user-status/:transaction_code, resolving unlocked
// artifact ids to full catalog records.
func UserStatus(c *fiber.Ctx) error {
	acct, err := database.Rewards.Find(c.Params("transaction_code"))
	if err != nil {
		return c.JSON(fiber.Map{"found": false})
	}

	unlocked := make([]models.Artifact, 0, len(acct.UnlockedArtifactIDs))
	for _, id := range acct.UnlockedArtifactIDs {
		if a, ok := catalog.Find(id); ok {
			unlocked = append(unlocked, a)
		}
	}
	return c.JSON(fiber.Map{
		"found":              true,
		"user":               acct,
		"unlocked_artifacts": unlocked,
	})
}

// Artifacts handles GET /artifacts: the full catalog.
func Artifacts(c *fiber.Ctx) error {
	return c.JSON(catalog.All())
}
