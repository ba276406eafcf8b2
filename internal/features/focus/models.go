package focus

import (
	"time"

	"github.com/google/uuid"
)

// Session phases.
const (
	PhaseFocus = "focus"
	PhaseBreak = "break"
)

// Mode is a timer preset, durations in minutes.
type Mode struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FocusMinutes int    `json:"focus_minutes"`
	BreakMinutes int    `json:"break_minutes"`
}

// Modes are the built-in timer presets. Custom accepts any duration the
// client picked; its listed values are only the starting point.
var Modes = map[string]Mode{
	"pomodoro": {ID: "pomodoro", Name: "Pomodoro", FocusMinutes: 25, BreakMinutes: 5},
	"deep":     {ID: "deep", Name: "Deep Focus", FocusMinutes: 45, BreakMinutes: 10},
	"sprint":   {ID: "sprint", Name: "Sprint", FocusMinutes: 15, BreakMinutes: 5},
	"custom":   {ID: "custom", Name: "Libre", FocusMinutes: 25, BreakMinutes: 5},
}

// FocusSession is one completed timer interval.
type FocusSession struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Mode        string    `gorm:"size:16;not null" json:"mode"`
	Phase       string    `gorm:"size:8;not null" json:"phase"`
	Minutes     int       `gorm:"not null" json:"minutes"`
	CompletedAt time.Time `gorm:"index" json:"completed_at"`
}

// FocusStreak tracks consecutive days with at least one completed focus
// interval.
type FocusStreak struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	CurrentStreak int       `gorm:"default:0" json:"current_streak"`
	LongestStreak int       `gorm:"default:0" json:"longest_streak"`
	LastFocusDate time.Time `json:"last_focus_date"`
	UpdatedAt     time.Time `json:"-"`
}

// --- DTOs ---

type RecordSessionRequest struct {
	Mode    string `json:"mode"`
	Phase   string `json:"phase"`
	Minutes int    `json:"minutes"`
}

type SessionsResponse struct {
	Sessions []FocusSession `json:"sessions"`
	Total    int            `json:"total"`
}

type StatsResponse struct {
	TotalSessions     int64 `json:"total_sessions"`
	TotalFocusMinutes int64 `json:"total_focus_minutes"`
	TodaySessions     int64 `json:"today_sessions"`
	CurrentStreak     int   `json:"current_streak"`
	LongestStreak     int   `json:"longest_streak"`
}
