package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridpulse/streetlight-dispatch/internal/api/http/handlers"
	"github.com/gridpulse/streetlight-dispatch/internal/auth"
	"github.com/gridpulse/streetlight-dispatch/internal/config"
	"github.com/gridpulse/streetlight-dispatch/internal/events"
	"github.com/gridpulse/streetlight-dispatch/internal/observability"
	"github.com/gridpulse/streetlight-dispatch/internal/repository/memory"
	"github.com/gridpulse/streetlight-dispatch/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()

	dispatchService := service.NewDispatchService(service.DispatchDependencies{
		TicketRepo:  store.Tickets(),
		AssetRepo:   store.Assets(),
		WorkerRepo:  store.Workers(),
		HistoryRepo: store.History(),
		Atomic:      store,
		Dispatcher:  dispatcher,
	})
	assetService := service.NewAssetService(store.Assets(), dispatchService, dispatcher, logger)
	locationService := service.NewLocationService(store.Workers(), nil, 10*time.Minute, logger)

	authCfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}
	tokenManager := auth.NewTokenManager(authCfg.JWTSecret, authCfg.AccessTokenTTLMinutes)
	authService := service.NewAuthService(authCfg, service.AuthDependencies{
		WorkerRepo: store.Workers(),
		Tokens:     tokenManager,
		Logger:     logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil),
		Workers:        handlers.NewWorkersHandler(authService, locationService),
		Assets:         handlers.NewAssetsHandler(assetService),
		Tickets:        handlers.NewTicketsHandler(dispatchService),
		Tasks:          handlers.NewTasksHandler(dispatchService, locationService),
		AuthMiddleware: auth.NewAuthMiddleware(tokenManager, store.Workers()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func registerWorker(t *testing.T, app *fiber.App, name, role string) (id, token string) {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"display_name": name,
		"email":        name + "@example.com",
		"password":     "hunter2",
		"role":         role,
	})
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	worker := data["worker"].(map[string]any)
	return worker["id"].(string), data["token"].(string)
}

func TestFaultToResolutionFlow(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := registerWorker(t, app, "admin", "admin")
	_, linemanToken := registerWorker(t, app, "ravi", "lineman")

	status, body := doJSON(t, app, http.MethodPost, "/assets", adminToken, map[string]any{
		"asset_id":  "A001",
		"latitude":  28.6139,
		"longitude": 77.2090,
	})
	require.Equal(t, http.StatusCreated, status)
	assetID := body["data"].(map[string]any)["id"].(string)

	// fault report opens a ticket
	status, body = doJSON(t, app, http.MethodPatch, "/assets/"+assetID+"/status", adminToken, map[string]any{
		"status": "faulty",
	})
	require.Equal(t, http.StatusOK, status)
	ticket := body["data"].(map[string]any)["ticket"].(map[string]any)
	ticketID := ticket["id"].(string)
	assert.Equal(t, "Open", ticket["status"])

	// the lineman sees it nearby and claims it
	status, body = doJSON(t, app, http.MethodGet, "/tasks/nearby?lat=28.6139&lon=77.2090", linemanToken, nil)
	require.Equal(t, http.StatusOK, status)
	nearby := body["data"].([]any)
	require.Len(t, nearby, 1)

	status, body = doJSON(t, app, http.MethodPost, "/tasks/"+ticketID+"/claim", linemanToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Assigned", body["data"].(map[string]any)["status"])

	// asset flipped to under repair
	status, body = doJSON(t, app, http.MethodGet, "/assets/"+assetID, linemanToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "under repair", body["data"].(map[string]any)["status"])

	status, body = doJSON(t, app, http.MethodPost, "/tasks/"+ticketID+"/resolve", linemanToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Resolved", body["data"].(map[string]any)["status"])

	status, body = doJSON(t, app, http.MethodGet, "/assets/"+assetID, linemanToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "working", body["data"].(map[string]any)["status"])
}

func TestClaimedTicketReturnsConflict(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := registerWorker(t, app, "admin", "admin")
	_, firstToken := registerWorker(t, app, "ravi", "lineman")
	_, secondToken := registerWorker(t, app, "meena", "lineman")

	status, body := doJSON(t, app, http.MethodPost, "/assets", adminToken, map[string]any{
		"asset_id": "A001", "latitude": 28.6139, "longitude": 77.2090,
	})
	require.Equal(t, http.StatusCreated, status)
	assetID := body["data"].(map[string]any)["id"].(string)

	status, body = doJSON(t, app, http.MethodPatch, "/assets/"+assetID+"/status", adminToken, map[string]any{"status": "faulty"})
	require.Equal(t, http.StatusOK, status)
	ticketID := body["data"].(map[string]any)["ticket"].(map[string]any)["id"].(string)

	status, _ = doJSON(t, app, http.MethodPost, "/tasks/"+ticketID+"/claim", firstToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodPost, "/tasks/"+ticketID+"/claim", secondToken, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "TICKET_NOT_AVAILABLE", body["error"].(map[string]any)["code"])
}

func TestRoleEnforcement(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := registerWorker(t, app, "admin", "admin")
	_, linemanToken := registerWorker(t, app, "ravi", "lineman")

	// linemen cannot register assets or browse the dispatch queue
	status, _ := doJSON(t, app, http.MethodPost, "/assets", linemanToken, map[string]any{
		"asset_id": "A001", "latitude": 28.6, "longitude": 77.2,
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodGet, "/tickets?status=Open", linemanToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// admins cannot claim field tasks
	status, _ = doJSON(t, app, http.MethodPost, "/tasks/some-id/claim", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// no token at all
	status, body := doJSON(t, app, http.MethodGet, "/tasks/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["error"].(map[string]any)["code"])
}

func TestNearbyWithoutLocationFails(t *testing.T) {
	app := newTestApp(t)
	_, linemanToken := registerWorker(t, app, "ravi", "lineman")

	status, body := doJSON(t, app, http.MethodGet, "/tasks/nearby", linemanToken, nil)
	assert.Equal(t, http.StatusFailedDependency, status)
	assert.Equal(t, "LOCATION_UNAVAILABLE", body["error"].(map[string]any)["code"])

	// after a position report the search works
	status, _ = doJSON(t, app, http.MethodPut, "/location", linemanToken, map[string]any{
		"latitude": 28.6139, "longitude": 77.2090,
	})
	require.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, app, http.MethodGet, "/tasks/nearby", linemanToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestDirectAssignFlow(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := registerWorker(t, app, "admin", "admin")
	linemanID, linemanToken := registerWorker(t, app, "ravi", "lineman")

	status, body := doJSON(t, app, http.MethodPost, "/assets", adminToken, map[string]any{
		"asset_id": "A001", "latitude": 28.6139, "longitude": 77.2090,
	})
	require.Equal(t, http.StatusCreated, status)
	assetID := body["data"].(map[string]any)["id"].(string)

	status, body = doJSON(t, app, http.MethodPatch, "/assets/"+assetID+"/status", adminToken, map[string]any{"status": "faulty"})
	require.Equal(t, http.StatusOK, status)
	ticketID := body["data"].(map[string]any)["ticket"].(map[string]any)["id"].(string)

	status, _ = doJSON(t, app, http.MethodPost, "/tickets/"+ticketID+"/assign", adminToken, map[string]any{
		"worker_id": linemanID,
	})
	require.Equal(t, http.StatusOK, status)

	// asset flips to under repair just like a claim
	status, body = doJSON(t, app, http.MethodGet, "/assets/"+assetID, adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "under repair", body["data"].(map[string]any)["status"])

	status, body = doJSON(t, app, http.MethodGet, "/tasks/mine", linemanToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 1)

	// audit trail shows created then assigned
	status, body = doJSON(t, app, http.MethodGet, "/tickets/"+ticketID+"/history", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	entries := body["data"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "CREATED", entries[0].(map[string]any)["change_type"])
	assert.Equal(t, "ASSIGNED", entries[1].(map[string]any)["change_type"])
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(t)
	status, body := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])
}
