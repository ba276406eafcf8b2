package plans

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/learnai-app/learnai-backend/internal/hook"
	"github.com/learnai-app/learnai-backend/internal/quota"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Each pooled connection would get its own in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&LearningPlan{}))
	return db
}

func validRequest() CreatePlanRequest {
	return CreatePlanRequest{
		Age:                  "15",
		SchoolLevel:          "lycee",
		AverageGrade:         "12",
		LearningDifficulties: "concentration",
		Subject:              "Mathématiques",
		SpecificRequests:     "plus d'exercices",
	}
}

func TestCreateAndCurrent(t *testing.T) {
	svc := NewPlanService(testDB(t), nil)
	userID := uuid.New()

	_, err := svc.Current(userID)
	assert.ErrorIs(t, err, ErrNoPlan)

	first, err := svc.Create(userID, validRequest(), "premier plan")
	require.NoError(t, err)
	second, err := svc.Create(userID, validRequest(), "deuxième plan")
	require.NoError(t, err)
	assert.NotEqual(t, first.PlanID, second.PlanID)

	cur, err := svc.Current(userID)
	require.NoError(t, err)
	assert.Equal(t, second.PlanID, cur.PlanID)
	assert.Equal(t, "deuxième plan", cur.GeneratedPlan)
}

func TestPromoteCurrentIdempotent(t *testing.T) {
	svc := NewPlanService(testDB(t), nil)
	userID := uuid.New()

	_, err := svc.PromoteCurrent(userID)
	assert.ErrorIs(t, err, ErrNoPlan)

	plan, err := svc.Create(userID, validRequest(), "contenu")
	require.NoError(t, err)

	saved1, err := svc.PromoteCurrent(userID)
	require.NoError(t, err)
	assert.Equal(t, plan.PlanID, saved1.PlanID)
	assert.True(t, saved1.Saved)
	assert.NotEqual(t, plan.ID, saved1.ID)

	// Promoting again must not create a second saved copy.
	saved2, err := svc.PromoteCurrent(userID)
	require.NoError(t, err)
	assert.Equal(t, saved1.ID, saved2.ID)
	assert.Len(t, svc.ListSaved(userID), 1)

	// The working history still has the original row.
	cur, err := svc.Current(userID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, cur.ID)
}

func TestDeleteSavedLeavesHistory(t *testing.T) {
	svc := NewPlanService(testDB(t), nil)
	userID := uuid.New()

	plan, err := svc.Create(userID, validRequest(), "contenu")
	require.NoError(t, err)
	_, err = svc.PromoteCurrent(userID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSaved(userID, plan.PlanID))
	assert.Empty(t, svc.ListSaved(userID))
	assert.Len(t, svc.ListAll(userID), 1)

	// Unknown IDs are a silent no-op.
	assert.NoError(t, svc.DeleteSaved(userID, "plan_inexistant"))
}

func TestCountIgnoresSavedCopies(t *testing.T) {
	svc := NewPlanService(testDB(t), nil)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(userID, validRequest(), fmt.Sprintf("plan %d", i))
		require.NoError(t, err)
	}
	_, err := svc.PromoteCurrent(userID)
	require.NoError(t, err)

	count, err := svc.Count(userID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestQuotaBlocksAtLimit(t *testing.T) {
	svc := NewPlanService(testDB(t), nil)
	userID := uuid.New()

	for i := 0; i < quota.FreePlanLimit; i++ {
		_, err := svc.Create(userID, validRequest(), "plan")
		require.NoError(t, err)
	}
	count, err := svc.Count(userID)
	require.NoError(t, err)

	assert.True(t, quota.LimitReached(false, int(count)))
	assert.False(t, quota.LimitReached(true, int(count)))
	assert.Equal(t, quota.Allowance{Plans: 0}, quota.Remaining(false, int(count)))
}

func TestOrphanAdoption(t *testing.T) {
	db := testDB(t)
	svc := NewPlanService(db, nil)

	// A record written before accounts existed has no owner.
	orphan := LearningPlan{
		ID:            uuid.New(),
		PlanID:        "plan_orphelin",
		Subject:       "Histoire",
		GeneratedPlan: "ancien plan",
	}
	require.NoError(t, db.Create(&orphan).Error)

	userID := uuid.New()
	plans := svc.ListAll(userID)
	require.Len(t, plans, 1)
	require.NotNil(t, plans[0].UserID)
	assert.Equal(t, userID, *plans[0].UserID)

	// A later user sees nothing; the orphan is already claimed.
	other := uuid.New()
	assert.Empty(t, svc.ListAll(other))
}

func TestUserIsolation(t *testing.T) {
	svc := NewPlanService(testDB(t), nil)
	alice := uuid.New()
	bob := uuid.New()

	plan, err := svc.Create(alice, validRequest(), "plan d'Alice")
	require.NoError(t, err)
	_, err = svc.Create(bob, validRequest(), "plan de Bob")
	require.NoError(t, err)

	assert.Len(t, svc.ListAll(alice), 1)
	_, err = svc.Get(bob, plan.PlanID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestGetPrefersSavedCopy(t *testing.T) {
	svc := NewPlanService(testDB(t), nil)
	userID := uuid.New()

	plan, err := svc.Create(userID, validRequest(), "contenu")
	require.NoError(t, err)
	saved, err := svc.PromoteCurrent(userID)
	require.NoError(t, err)

	got, err := svc.Get(userID, plan.PlanID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.True(t, got.Saved)
}

func TestPurgeUser(t *testing.T) {
	db := testDB(t)
	svc := NewPlanService(db, nil)
	userID := uuid.New()

	_, err := svc.Create(userID, validRequest(), "contenu")
	require.NoError(t, err)
	_, err = svc.PromoteCurrent(userID)
	require.NoError(t, err)

	require.NoError(t, PurgeUser(db, userID))
	assert.Empty(t, svc.ListAll(userID))
	assert.Empty(t, svc.ListSaved(userID))
}

func TestGenerateAndStore(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"plan": "## Semaine 1\n- étudier"}`)
	}))
	defer ts.Close()

	db := testDB(t)
	gen := NewGenerator(hook.NewClient(0), ts.URL)
	svc := NewPlanService(db, gen)
	userID := uuid.New()

	plan, err := svc.GenerateAndStore(context.Background(), userID, validRequest())
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())

	// The stored text is already normalized.
	assert.Equal(t, "Semaine 1\n• étudier", plan.GeneratedPlan)

	_, err = svc.GenerateAndStore(context.Background(), userID, CreatePlanRequest{Age: "15", SchoolLevel: "inconnu", Subject: "X"})
	assert.ErrorIs(t, err, ErrInvalidSchoolLevel)
}

func TestGenerateAndStoreCollapsesConcurrentDuplicates(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// Hold the response until every caller is in flight, so they
		// all pile onto the same generation.
		<-release
		fmt.Fprint(w, `{"response": "plan partagé"}`)
	}))
	defer ts.Close()

	db := testDB(t)
	gen := NewGenerator(hook.NewClient(0), ts.URL)
	svc := NewPlanService(db, gen)
	userID := uuid.New()

	const callers = 5
	results := make([]*LearningPlan, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.GenerateAndStore(context.Background(), userID, validRequest())
		}(i)
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	// One webhook call, one stored row, every caller got the same plan.
	assert.EqualValues(t, 1, hits.Load())
	count, err := svc.Count(userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].PlanID, results[i].PlanID)
	}
}

func TestGenerateAndStoreDistinctRequestsProceed(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "plan")
	}))
	defer ts.Close()

	db := testDB(t)
	svc := NewPlanService(db, NewGenerator(hook.NewClient(0), ts.URL))
	userID := uuid.New()

	reqA := validRequest()
	reqB := validRequest()
	reqB.Subject = "Physique"

	_, err := svc.GenerateAndStore(context.Background(), userID, reqA)
	require.NoError(t, err)
	_, err = svc.GenerateAndStore(context.Background(), userID, reqB)
	require.NoError(t, err)

	assert.EqualValues(t, 2, hits.Load())
	count, err := svc.Count(userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
