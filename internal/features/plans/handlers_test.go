package plans

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/learnai-app/learnai-backend/internal/config"
	"github.com/learnai-app/learnai-backend/internal/hook"
	"github.com/learnai-app/learnai-backend/internal/middleware"
	"github.com/learnai-app/learnai-backend/internal/models"
	"github.com/learnai-app/learnai-backend/internal/quota"
	"github.com/learnai-app/learnai-backend/internal/services"
)

const testSecret = "test-secret"

type planTestEnv struct {
	app *fiber.App
	db  *gorm.DB
	svc *PlanService
}

func newPlanTestEnv(t *testing.T, webhookURL string) *planTestEnv {
	t.Helper()
	db := testDB(t)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Subscription{}))

	cfg := &config.Config{
		JWTSecret:      testSecret,
		PlanWebhookURL: webhookURL,
	}
	subService := services.NewSubscriptionService(db)

	app := fiber.New()
	protected := app.Group("/api/p", middleware.JWTProtected(cfg))
	New(subService).RegisterRoutes(protected, db, cfg)

	gen := NewGenerator(hook.NewClient(0), webhookURL)
	return &planTestEnv{app: app, db: db, svc: NewPlanService(db, gen)}
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID.String(),
		"email": "test@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
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
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	resp.Body.Close()
}

func TestPlanLifecycle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response": "## Semaine 1: Révisions\n- relire le cours"}`)
	}))
	defer ts.Close()

	env := newPlanTestEnv(t, ts.URL)
	token := signToken(t, uuid.New())

	// Create
	resp := doJSON(t, env.app, "POST", "/api/p/plans", token, validRequest())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created LearningPlan
	decode(t, resp, &created)
	assert.Equal(t, "Semaine 1: Révisions\n• relire le cours", created.GeneratedPlan)
	assert.NotEmpty(t, created.PlanID)

	// Current
	resp = doJSON(t, env.app, "GET", "/api/p/plans/current", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var current LearningPlan
	decode(t, resp, &current)
	assert.Equal(t, created.PlanID, current.PlanID)

	// Save
	resp = doJSON(t, env.app, "POST", "/api/p/plans/current/save", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Saved list
	resp = doJSON(t, env.app, "GET", "/api/p/plans/saved", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var saved PlansListResponse
	decode(t, resp, &saved)
	require.Equal(t, 1, saved.Total)
	assert.Equal(t, created.PlanID, saved.Plans[0].PlanID)

	// Lookup by ID and PDF export
	resp = doJSON(t, env.app, "GET", "/api/p/plans/"+created.PlanID, token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, env.app, "GET", "/api/p/plans/"+created.PlanID+"/pdf", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdfData, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdfData[:4]))

	// Delete saved
	resp = doJSON(t, env.app, "DELETE", "/api/p/plans/saved/"+created.PlanID, token, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// History untouched
	resp = doJSON(t, env.app, "GET", "/api/p/plans", token, nil)
	var history PlansListResponse
	decode(t, resp, &history)
	assert.Equal(t, 1, history.Total)
}

func TestCreatePlanRequiresAuth(t *testing.T) {
	env := newPlanTestEnv(t, "http://127.0.0.1:1")

	resp := doJSON(t, env.app, "POST", "/api/p/plans", "", validRequest())
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "/login", body["redirect"])
}

func TestCreatePlanValidatesFields(t *testing.T) {
	env := newPlanTestEnv(t, "http://127.0.0.1:1")
	token := signToken(t, uuid.New())

	resp := doJSON(t, env.app, "POST", "/api/p/plans", token, CreatePlanRequest{Age: "15"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Contains(t, body["message"], "school_level")
	assert.Contains(t, body["message"], "subject")
}

func TestQuotaGateBlocksBeforeGeneration(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "plan")
	}))
	defer ts.Close()

	env := newPlanTestEnv(t, ts.URL)
	userID := uuid.New()
	token := signToken(t, userID)

	for i := 0; i < quota.FreePlanLimit; i++ {
		_, err := env.svc.Create(userID, validRequest(), "plan existant")
		require.NoError(t, err)
	}

	resp := doJSON(t, env.app, "POST", "/api/p/plans", token, validRequest())
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "/pricing", body["redirect"])

	// The generator webhook must never have been called.
	assert.EqualValues(t, 0, hits.Load())
}

func TestQuotaUnlimitedForSubscriber(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "plan généré")
	}))
	defer ts.Close()

	env := newPlanTestEnv(t, ts.URL)
	userID := uuid.New()
	token := signToken(t, userID)

	require.NoError(t, env.db.Create(&models.Subscription{
		ID:               uuid.New(),
		UserID:           userID,
		Status:           "active",
		ProductID:        "premium_monthly",
		CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour),
	}).Error)

	for i := 0; i < quota.FreePlanLimit; i++ {
		_, err := env.svc.Create(userID, validRequest(), "plan existant")
		require.NoError(t, err)
	}

	resp := doJSON(t, env.app, "POST", "/api/p/plans", token, validRequest())
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, env.app, "GET", "/api/p/plans/quota", token, nil)
	var q map[string]interface{}
	decode(t, resp, &q)
	assert.Equal(t, "unlimited", q["remaining"])
	assert.Equal(t, false, q["limit_reached"])
	assert.Equal(t, true, q["subscribed"])
}

func TestQuotaEndpoint(t *testing.T) {
	env := newPlanTestEnv(t, "http://127.0.0.1:1")
	userID := uuid.New()
	token := signToken(t, userID)

	_, err := env.svc.Create(userID, validRequest(), "plan")
	require.NoError(t, err)

	resp := doJSON(t, env.app, "GET", "/api/p/plans/quota", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var q QuotaResponse
	decode(t, resp, &q)
	assert.Equal(t, 1, q.Used)
	assert.Equal(t, quota.FreePlanLimit, q.Limit)
	assert.False(t, q.LimitReached)
	assert.False(t, q.Subscribed)
}

func TestWebhookFailurePersistsFallback(t *testing.T) {
	env := newPlanTestEnv(t, "http://127.0.0.1:1")
	token := signToken(t, uuid.New())

	resp := doJSON(t, env.app, "POST", "/api/p/plans", token, validRequest())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created LearningPlan
	decode(t, resp, &created)
	assert.Equal(t, fallbackTechnicalError, created.GeneratedPlan)
}

func TestGetUnknownPlanRedirects(t *testing.T) {
	env := newPlanTestEnv(t, "http://127.0.0.1:1")
	token := signToken(t, uuid.New())

	resp := doJSON(t, env.app, "GET", "/api/p/plans/plan_inconnu", token, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "/saved-plans", body["redirect"])
}
