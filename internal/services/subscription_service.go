package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/learnai-app/learnai-backend/internal/dto"
	"github.com/learnai-app/learnai-backend/internal/models"
	"github.com/learnai-app/learnai-backend/internal/scope"
	"gorm.io/gorm"
)

type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

func (s *SubscriptionService) HandleWebhookEvent(event *dto.RevenueCatEvent) error {
	switch event.Type {
	case "INITIAL_PURCHASE":
		return s.handleInitialPurchase(event)
	case "RENEWAL":
		return s.handleRenewal(event)
	case "CANCELLATION":
		return s.handleCancellation(event)
	case "EXPIRATION":
		return s.handleExpiration(event)
	default:
		return nil
	}
}

func (s *SubscriptionService) handleInitialPurchase(event *dto.RevenueCatEvent) error {
	userID, err := uuid.Parse(event.AppUserID)
	if err != nil {
		return fmt.Errorf("webhook app_user_id is not a user id: %w", err)
	}

	sub := models.Subscription{
		ID:                 uuid.New(),
		UserID:             userID,
		RevenueCatID:       event.AppUserID,
		ProductID:          event.ProductID,
		Status:             "active",
		CurrentPeriodStart: msToTime(event.PurchasedAtMs),
		CurrentPeriodEnd:   msToTime(event.ExpirationAtMs),
	}

	return s.db.Create(&sub).Error
}

func (s *SubscriptionService) handleRenewal(event *dto.RevenueCatEvent) error {
	var sub models.Subscription
	if err := s.db.Where("revenuecat_id = ?", event.AppUserID).First(&sub).Error; err != nil {
		return fmt.Errorf("subscription not found for renewal: %w", err)
	}

	return s.db.Model(&sub).Updates(map[string]interface{}{
		"status":               "active",
		"current_period_end":   msToTime(event.ExpirationAtMs),
		"current_period_start": msToTime(event.PurchasedAtMs),
	}).Error
}

func (s *SubscriptionService) handleCancellation(event *dto.RevenueCatEvent) error {
	return s.db.Model(&models.Subscription{}).
		Where("revenuecat_id = ?", event.AppUserID).
		Update("status", "cancelled").Error
}

func (s *SubscriptionService) handleExpiration(event *dto.RevenueCatEvent) error {
	return s.db.Model(&models.Subscription{}).
		Where("revenuecat_id = ?", event.AppUserID).
		Update("status", "expired").Error
}

// HasActiveSubscription reports whether the user currently holds an
// active, unexpired subscription. The quota policy re-asks on every
// decision, so this is never cached.
func (s *SubscriptionService) HasActiveSubscription(userID uuid.UUID) bool {
	sub, err := s.Current(userID)
	if err != nil || sub == nil {
		return false
	}
	return sub.Status == "active" && sub.CurrentPeriodEnd.After(time.Now())
}

// Current returns the most recent subscription record for the user, or
// nil when the user never subscribed.
func (s *SubscriptionService) Current(userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Scopes(scope.ForUser(userID)).Order("created_at DESC").First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

func msToTime(ms int64) time.Time {
	return time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond))
}
