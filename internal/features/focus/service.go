package focus

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnai-app/learnai-backend/internal/scope"
)

var (
	ErrInvalidMode    = errors.New("invalid focus mode")
	ErrInvalidPhase   = errors.New("invalid session phase")
	ErrInvalidMinutes = errors.New("minutes must be between 1 and 240")
)

type FocusService struct {
	db *gorm.DB
}

func NewFocusService(db *gorm.DB) *FocusService {
	return &FocusService{db: db}
}

// Record stores a completed timer interval. Focus phases also advance
// the day streak; breaks do not.
func (s *FocusService) Record(userID uuid.UUID, req RecordSessionRequest) (*FocusSession, error) {
	if _, ok := Modes[req.Mode]; !ok {
		return nil, ErrInvalidMode
	}
	if req.Phase != PhaseFocus && req.Phase != PhaseBreak {
		return nil, ErrInvalidPhase
	}
	if req.Minutes < 1 || req.Minutes > 240 {
		return nil, ErrInvalidMinutes
	}

	session := FocusSession{
		ID:          uuid.New(),
		UserID:      userID,
		Mode:        req.Mode,
		Phase:       req.Phase,
		Minutes:     req.Minutes,
		CompletedAt: time.Now(),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}

	if req.Phase == PhaseFocus {
		if err := s.updateStreak(userID); err != nil {
			return nil, fmt.Errorf("failed to update streak: %w", err)
		}
	}
	return &session, nil
}

// updateStreak advances the day streak based on when the user last
// completed a focus interval.
func (s *FocusService) updateStreak(userID uuid.UUID) error {
	var streak FocusStreak
	err := s.db.Scopes(scope.ForUser(userID)).First(&streak).Error

	now := time.Now()
	today := now.Truncate(24 * time.Hour)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = FocusStreak{
			ID:            uuid.New(),
			UserID:        userID,
			CurrentStreak: 1,
			LongestStreak: 1,
			LastFocusDate: now,
		}
		return s.db.Create(&streak).Error
	} else if err != nil {
		return err
	}

	lastDay := streak.LastFocusDate.Truncate(24 * time.Hour)
	if lastDay.Equal(today) {
		streak.LastFocusDate = now
		return s.db.Save(&streak).Error
	}

	yesterday := today.Add(-24 * time.Hour)
	if lastDay.Equal(yesterday) {
		streak.CurrentStreak++
	} else {
		streak.CurrentStreak = 1
	}
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastFocusDate = now
	return s.db.Save(&streak).Error
}

// List returns the user's sessions, newest first, capped at limit.
func (s *FocusService) List(userID uuid.UUID, limit int) ([]FocusSession, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	var sessions []FocusSession
	err := s.db.Scopes(scope.ForUser(userID)).
		Order("completed_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// Stats aggregates the user's focus history.
func (s *FocusService) Stats(userID uuid.UUID) (*StatsResponse, error) {
	var total int64
	err := s.db.Model(&FocusSession{}).
		Scopes(scope.ForUser(userID)).
		Where("phase = ?", PhaseFocus).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	var minutes int64
	err = s.db.Model(&FocusSession{}).
		Scopes(scope.ForUser(userID)).
		Where("phase = ?", PhaseFocus).
		Select("COALESCE(SUM(minutes), 0)").
		Scan(&minutes).Error
	if err != nil {
		return nil, err
	}

	var today int64
	err = s.db.Model(&FocusSession{}).
		Scopes(scope.ForUser(userID)).
		Where("phase = ? AND completed_at >= ?", PhaseFocus, time.Now().Truncate(24*time.Hour)).
		Count(&today).Error
	if err != nil {
		return nil, err
	}

	stats := &StatsResponse{TotalSessions: total, TotalFocusMinutes: minutes, TodaySessions: today}

	var streak FocusStreak
	err = s.db.Scopes(scope.ForUser(userID)).First(&streak).Error
	if err == nil {
		stats.CurrentStreak = streak.CurrentStreak
		stats.LongestStreak = streak.LongestStreak
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return stats, nil
}

// PurgeUser deletes the user's sessions and streak inside the account
// deletion transaction.
func PurgeUser(tx *gorm.DB, userID uuid.UUID) error {
	if err := tx.Where("user_id = ?", userID).Delete(&FocusSession{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).Delete(&FocusStreak{}).Error
}
