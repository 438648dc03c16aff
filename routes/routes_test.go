package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/Gymnott1/mpesa-simple-node-server/database"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	require.NoError(t, database.Open(t.TempDir()))
	t.Cleanup(database.Close)
	app := fiber.New()
	Setup(app)
	return app
}

func request(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func jsonMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

const johnDoeSMS = "QGH7KL2M3N Confirmed. You have received Ksh100.00 from JOHN DOE 0712345678 on 12/11/25 at 8:30 AM"

func postPayment(t *testing.T, app *fiber.App, code, amount string) map[string]any {
	t.Helper()
	resp := request(t, app, "POST", "/mpesa-webhook", fiber.Map{
		"raw_message":      johnDoeSMS,
		"amount":           amount,
		"phone":            "0712345678",
		"transaction_code": code,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return jsonMap(t, resp)
}

func TestPaymentLifecycle(t *testing.T) {
	app := setupApp(t)

	// Accept the notification.
	body := postPayment(t, app, "ABC123", "100")
	require.Equal(t, "success", body["status"])
	paymentID, ok := body["payment_id"].(string)
	require.True(t, ok, "payment_id missing: %v", body)
	require.NotEmpty(t, paymentID)

	// Status query sees it processed (the unlock hook runs synchronously).
	body = jsonMap(t, request(t, app, "GET", "/check-payment/ABC123", nil))
	require.Equal(t, "found", body["status"])
	require.Equal(t, true, body["processed"])
	require.EqualValues(t, 100, body["amount"])

	// Claim points: floor(100 * 2).
	body = jsonMap(t, request(t, app, "POST", "/claim-points", fiber.Map{"transaction_code": "ABC123"}))
	require.Equal(t, true, body["success"])
	require.EqualValues(t, 200, body["points"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "JOHN DOE", user["sender_name"])

	// Unlock artifact 1 (cost 20).
	body = jsonMap(t, request(t, app, "POST", "/unlock-artifact", fiber.Map{"transaction_code": "ABC123", "artifact_id": 1}))
	require.Equal(t, true, body["success"])
	require.EqualValues(t, 180, body["remaining_points"])
	artifact, ok := body["artifact"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Single Track", artifact["name"])

	// Status reflects the redemption with the full artifact record.
	body = jsonMap(t, request(t, app, "GET", "/user-status/ABC123", nil))
	require.Equal(t, true, body["found"])
	unlocked, ok := body["unlocked_artifacts"].([]any)
	require.True(t, ok)
	require.Len(t, unlocked, 1)
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	app := setupApp(t)

	first := postPayment(t, app, "DUP001", "250")
	second := postPayment(t, app, "DUP001", "250")
	require.Equal(t, "success", second["status"])
	require.Equal(t, first["payment_id"], second["payment_id"])

	body := jsonMap(t, request(t, app, "GET", "/payments", nil))
	require.EqualValues(t, 1, body["total"])
}

func TestWebhookTestPing(t *testing.T) {
	app := setupApp(t)

	resp := request(t, app, "POST", "/mpesa-webhook", fiber.Map{"test": "true"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := jsonMap(t, resp)
	require.Equal(t, "success", body["status"])
	require.Equal(t, "Test received", body["message"])

	body = jsonMap(t, request(t, app, "GET", "/payments", nil))
	require.EqualValues(t, 0, body["total"])
}

func TestWebhookFragment(t *testing.T) {
	app := setupApp(t)

	fragments := []fiber.Map{
		{"raw_message": "Confirmed. You have recei"},
		{"amount": "100"},
		{"transaction_code": "ABC123"},
		{"amount": "not-a-number", "transaction_code": "ABC123"},
	}
	for _, f := range fragments {
		resp := request(t, app, "POST", "/mpesa-webhook", f)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := jsonMap(t, resp)
		require.Equal(t, "ignored", body["status"])
		require.Equal(t, "SMS fragment", body["message"])
	}

	// Fragments never reach the ledger.
	body := jsonMap(t, request(t, app, "GET", "/payments", nil))
	require.EqualValues(t, 0, body["total"])
	body = jsonMap(t, request(t, app, "GET", "/check-payment/ABC123", nil))
	require.Equal(t, "not_found", body["status"])
}

func TestWebhookNumericFields(t *testing.T) {
	app := setupApp(t)

	// The relay sometimes sends amount and timestamp as JSON numbers.
	resp := request(t, app, "POST", "/mpesa-webhook", fiber.Map{
		"amount":           150.5,
		"transaction_code": "NUM001",
		"timestamp":        time.Now().UnixMilli(),
	})
	body := jsonMap(t, resp)
	require.Equal(t, "success", body["status"])

	body = jsonMap(t, request(t, app, "GET", "/check-payment/NUM001", nil))
	require.Equal(t, "found", body["status"])
	require.EqualValues(t, 150.5, body["amount"])
}

func TestClaimPointsFailures(t *testing.T) {
	app := setupApp(t)

	body := jsonMap(t, request(t, app, "POST", "/claim-points", fiber.Map{"transaction_code": "GHOST"}))
	require.Equal(t, false, body["success"])
	require.Equal(t, "payment not found", body["message"])

	postPayment(t, app, "ABC123", "100")
	body = jsonMap(t, request(t, app, "POST", "/claim-points", fiber.Map{"transaction_code": "ABC123"}))
	require.Equal(t, true, body["success"])

	body = jsonMap(t, request(t, app, "POST", "/claim-points", fiber.Map{"transaction_code": "ABC123"}))
	require.Equal(t, false, body["success"])
	require.Contains(t, body["message"], "already claimed")

	body = jsonMap(t, request(t, app, "POST", "/claim-points", fiber.Map{}))
	require.Equal(t, false, body["success"])
}

func TestUnlockArtifactFailures(t *testing.T) {
	app := setupApp(t)

	postPayment(t, app, "ABC123", "50") // 100 points
	jsonMap(t, request(t, app, "POST", "/claim-points", fiber.Map{"transaction_code": "ABC123"}))

	// Unknown artifact.
	body := jsonMap(t, request(t, app, "POST", "/unlock-artifact", fiber.Map{"transaction_code": "ABC123", "artifact_id": 99}))
	require.Equal(t, false, body["success"])
	require.Equal(t, "artifact not found", body["message"])

	// No account yet for this code.
	postPayment(t, app, "OTHER1", "50")
	body = jsonMap(t, request(t, app, "POST", "/unlock-artifact", fiber.Map{"transaction_code": "OTHER1", "artifact_id": 1}))
	require.Equal(t, false, body["success"])
	require.Contains(t, body["message"], "claim points first")

	// Artifact 2 costs 150, balance is 100: message names both figures.
	body = jsonMap(t, request(t, app, "POST", "/unlock-artifact", fiber.Map{"transaction_code": "ABC123", "artifact_id": 2}))
	require.Equal(t, false, body["success"])
	require.Contains(t, body["message"], "costs 150")
	require.Contains(t, body["message"], "balance is 100")

	// Double unlock.
	body = jsonMap(t, request(t, app, "POST", "/unlock-artifact", fiber.Map{"transaction_code": "ABC123", "artifact_id": 1}))
	require.Equal(t, true, body["success"])
	body = jsonMap(t, request(t, app, "POST", "/unlock-artifact", fiber.Map{"transaction_code": "ABC123", "artifact_id": 1}))
	require.Equal(t, false, body["success"])
	require.Contains(t, body["message"], "already unlocked")

	// Only one debit applied.
	body = jsonMap(t, request(t, app, "GET", "/user-status/ABC123", nil))
	user := body["user"].(map[string]any)
	require.EqualValues(t, 80, user["points"])
}

func TestUserStatusNotFound(t *testing.T) {
	app := setupApp(t)

	body := jsonMap(t, request(t, app, "GET", "/user-status/GHOST", nil))
	require.Equal(t, false, body["found"])
}

func TestArtifactsCatalog(t *testing.T) {
	app := setupApp(t)

	resp := request(t, app, "GET", "/artifacts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var artifacts []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&artifacts))
	require.Len(t, artifacts, 4)
	require.EqualValues(t, 1, artifacts[0]["id"])
	require.EqualValues(t, 20, artifacts[0]["cost"])
}

func TestRecentPaymentsNewestFirst(t *testing.T) {
	app := setupApp(t)

	for i := 0; i < 12; i++ {
		postPayment(t, app, fmt.Sprintf("TX%03d", i), "10")
	}

	body := jsonMap(t, request(t, app, "GET", "/recent-payments", nil))
	require.EqualValues(t, 10, body["total"])
	recent := body["recent"].([]any)
	require.Len(t, recent, 10)

	newest := recent[0].(map[string]any)
	require.Equal(t, "TX011", newest["transaction_code"])

	// Display-formatted timestamp.
	_, err := time.Parse("2006-01-02 15:04:05", newest["received_at"].(string))
	require.NoError(t, err)
}

func TestWebhookPersistenceFailure(t *testing.T) {
	app := setupApp(t)

	postPayment(t, app, "OK1", "100")

	// Release the log files; the next durable append must fail.
	database.Close()

	resp := request(t, app, "POST", "/mpesa-webhook", fiber.Map{
		"amount":           "100",
		"transaction_code": "FAIL1",
	})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := jsonMap(t, resp)
	require.Equal(t, "error", body["status"])

	// The unpersisted payment was never indexed.
	body = jsonMap(t, request(t, app, "GET", "/check-payment/FAIL1", nil))
	require.Equal(t, "not_found", body["status"])

	// Redelivery of an already-durable payment still succeeds.
	dup := postPayment(t, app, "OK1", "100")
	require.Equal(t, "success", dup["status"])
}

func TestRewardPersistenceFailure(t *testing.T) {
	app := setupApp(t)

	postPayment(t, app, "ABC123", "100")
	body := jsonMap(t, request(t, app, "POST", "/claim-points", fiber.Map{"transaction_code": "ABC123"}))
	require.Equal(t, true, body["success"])

	database.Close()

	resp := request(t, app, "POST", "/unlock-artifact", fiber.Map{"transaction_code": "ABC123", "artifact_id": 1})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// Points and unlocked set unchanged after the failed unlock.
	body = jsonMap(t, request(t, app, "GET", "/user-status/ABC123", nil))
	user := body["user"].(map[string]any)
	require.EqualValues(t, 200, user["points"])
	require.Empty(t, body["unlocked_artifacts"])
}

func TestUnknownRoute(t *testing.T) {
	app := setupApp(t)

	resp := request(t, app, "GET", "/definitely-not-here", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := jsonMap(t, resp)
	require.Equal(t, "Endpoint not found", body["error"])
	endpoints, ok := body["available_endpoints"].([]any)
	require.True(t, ok)
	require.Contains(t, endpoints, "/mpesa-webhook")
}
