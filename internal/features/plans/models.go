package plans

import (
	"time"

	"github.com/google/uuid"
	"github.com/learnai-app/learnai-backend/internal/quota"
)

// LearningPlan is one learning-plan record. The working history and the
// saved collection live in the same table, told apart by Saved: a
// promotion copies the working row into the saved set under the same
// PlanID, so deleting a saved plan never touches the working history.
//
// UserID is nullable because records written before accounts were
// introduced carry no owner; they are adopted by the first user who
// lists their plans (see PlanService.adoptOrphans).
type LearningPlan struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"-"`
	PlanID               string     `gorm:"size:64;not null;index" json:"id"`
	UserID               *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Age                  string     `gorm:"size:10" json:"age"`
	SchoolLevel          string     `gorm:"size:20" json:"school_level"`
	AverageGrade         string     `gorm:"size:50" json:"average_grade"`
	LearningDifficulties string     `gorm:"type:text" json:"learning_difficulties"`
	Subject              string     `gorm:"size:255" json:"subject"`
	SpecificRequests     string     `gorm:"type:text" json:"specific_requests"`
	GeneratedPlan        string     `gorm:"type:text" json:"generated_plan"`
	Saved                bool       `gorm:"not null;default:false;index" json:"is_saved"`
	CreatedAt            time.Time  `gorm:"index" json:"created_at"`
}

// SchoolLevels are the accepted intake values, mapped to display labels
// for the PDF information panel.
var SchoolLevels = map[string]string{
	"primaire":  "Primaire",
	"college":   "Collège",
	"lycee":     "Lycée",
	"superieur": "Études supérieures",
}

// SchoolLevelLabel returns the display label, falling back to the raw
// value for levels written before validation existed.
func SchoolLevelLabel(level string) string {
	if label, ok := SchoolLevels[level]; ok {
		return label
	}
	return level
}

// --- DTOs ---

type CreatePlanRequest struct {
	Age                  string `json:"age"`
	SchoolLevel          string `json:"school_level"`
	AverageGrade         string `json:"average_grade"`
	LearningDifficulties string `json:"learning_difficulties"`
	Subject              string `json:"subject"`
	SpecificRequests     string `json:"specific_requests"`
}

type PlansListResponse struct {
	Plans []LearningPlan `json:"plans"`
	Total int            `json:"total"`
}

type QuotaResponse struct {
	Used         int             `json:"used"`
	Limit        int             `json:"limit"`
	Remaining    quota.Allowance `json:"remaining"`
	LimitReached bool            `json:"limit_reached"`
	Subscribed   bool            `json:"subscribed"`
}
