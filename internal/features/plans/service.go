package plans

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/learnai-app/learnai-backend/internal/scope"
)

var (
	ErrNoPlan             = errors.New("no current plan")
	ErrPlanNotFound       = errors.New("plan not found")
	ErrInvalidSchoolLevel = errors.New("invalid school level")
)

// PlanService owns the learning-plan store. Plans live in a single
// table split into a working set (Saved=false, the generation history)
// and a saved subset (Saved=true, copies promoted by the user). The
// two sets share PlanID as the business key.
type PlanService struct {
	db    *gorm.DB
	gen   *Generator
	group singleflight.Group
}

func NewPlanService(db *gorm.DB, gen *Generator) *PlanService {
	return &PlanService{db: db, gen: gen}
}

// GenerateAndStore produces a plan for the request and persists it as
// the new current working plan. Identical concurrent submissions from
// the same user collapse into one generation.
func (s *PlanService) GenerateAndStore(ctx context.Context, userID uuid.UUID, req CreatePlanRequest) (*LearningPlan, error) {
	if _, ok := SchoolLevels[req.SchoolLevel]; !ok {
		return nil, ErrInvalidSchoolLevel
	}

	key := dedupeKey(userID, req)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		text, err := s.gen.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		return s.Create(userID, req, Normalize(text))
	})
	if err != nil {
		return nil, err
	}
	return v.(*LearningPlan), nil
}

func dedupeKey(userID uuid.UUID, req CreatePlanRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s|%s",
		userID, req.Age, req.SchoolLevel, req.AverageGrade,
		req.LearningDifficulties, req.Subject, req.SpecificRequests)
	return hex.EncodeToString(h.Sum(nil))
}

// Create persists a generated plan into the user's working set.
func (s *PlanService) Create(userID uuid.UUID, req CreatePlanRequest, generatedText string) (*LearningPlan, error) {
	plan := &LearningPlan{
		ID:                   uuid.New(),
		PlanID:               fmt.Sprintf("plan_%d", time.Now().UnixNano()),
		UserID:               &userID,
		Age:                  req.Age,
		SchoolLevel:          req.SchoolLevel,
		AverageGrade:         req.AverageGrade,
		LearningDifficulties: req.LearningDifficulties,
		Subject:              req.Subject,
		SpecificRequests:     req.SpecificRequests,
		GeneratedPlan:        generatedText,
		Saved:                false,
	}
	if err := s.db.Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

// adoptOrphans claims plans persisted without an owner before accounts
// existed. Runs once per listing; the UPDATE is a no-op afterwards.
func (s *PlanService) adoptOrphans(userID uuid.UUID) {
	res := s.db.Model(&LearningPlan{}).
		Where("user_id IS NULL").
		Update("user_id", userID)
	if res.Error != nil {
		slog.Error("plan orphan adoption failed", "error", res.Error, "user_id", userID)
		return
	}
	if res.RowsAffected > 0 {
		slog.Info("adopted orphaned plans", "user_id", userID, "count", res.RowsAffected)
	}
}

// ListAll returns the user's working history, newest first. Read
// failures degrade to an empty list so the caller can still render.
func (s *PlanService) ListAll(userID uuid.UUID) []LearningPlan {
	s.adoptOrphans(userID)

	var plans []LearningPlan
	err := s.db.Scopes(scope.ForUser(userID)).
		Where("saved = ?", false).
		Order("created_at DESC").
		Find(&plans).Error
	if err != nil {
		slog.Error("failed to list plans", "error", err, "user_id", userID)
		return []LearningPlan{}
	}
	return plans
}

// ListSaved returns the user's saved plans, newest first.
func (s *PlanService) ListSaved(userID uuid.UUID) []LearningPlan {
	var plans []LearningPlan
	err := s.db.Scopes(scope.ForUser(userID)).
		Where("saved = ?", true).
		Order("created_at DESC").
		Find(&plans).Error
	if err != nil {
		slog.Error("failed to list saved plans", "error", err, "user_id", userID)
		return []LearningPlan{}
	}
	return plans
}

// Current returns the newest working plan, or ErrNoPlan.
func (s *PlanService) Current(userID uuid.UUID) (*LearningPlan, error) {
	var plan LearningPlan
	err := s.db.Scopes(scope.ForUser(userID)).
		Where("saved = ?", false).
		Order("created_at DESC").
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoPlan
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// PromoteCurrent copies the current working plan into the saved set.
// Promoting a plan whose PlanID is already saved is a no-op, so the
// operation is idempotent. The working row is untouched.
func (s *PlanService) PromoteCurrent(userID uuid.UUID) (*LearningPlan, error) {
	cur, err := s.Current(userID)
	if err != nil {
		return nil, err
	}

	var existing LearningPlan
	err = s.db.Scopes(scope.ForUser(userID)).
		Where("plan_id = ? AND saved = ?", cur.PlanID, true).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	saved := *cur
	saved.ID = uuid.New()
	saved.Saved = true
	saved.CreatedAt = time.Now()
	if err := s.db.Create(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteSaved removes a plan from the saved set only. The working
// history keeps its copy. Deleting an unknown ID is a silent no-op.
func (s *PlanService) DeleteSaved(userID uuid.UUID, planID string) error {
	return s.db.Scopes(scope.ForUser(userID)).
		Where("plan_id = ? AND saved = ?", planID, true).
		Delete(&LearningPlan{}).Error
}

// Count reports how many plans the user has generated. Only the
// working set counts; promoting does not consume quota.
func (s *PlanService) Count(userID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.Model(&LearningPlan{}).
		Scopes(scope.ForUser(userID)).
		Where("saved = ?", false).
		Count(&n).Error
	return n, err
}

// Get finds a plan by its business key in either set, preferring the
// saved copy when both exist.
func (s *PlanService) Get(userID uuid.UUID, planID string) (*LearningPlan, error) {
	var plan LearningPlan
	err := s.db.Scopes(scope.ForUser(userID)).
		Where("plan_id = ?", planID).
		Order("saved DESC").
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// PurgeUser deletes every plan the user owns. Runs inside the account
// deletion transaction.
func PurgeUser(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&LearningPlan{}).Error
}
