package dto

import "github.com/google/uuid"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// ErrorResponse is the uniform error envelope. Redirect, when present,
// names the screen the client should route to instead of showing an
// error page (login, pricing, saved-plans list).
type ErrorResponse struct {
	Error    bool   `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

type SubscriptionStatusResponse struct {
	Active           bool   `json:"active"`
	Status           string `json:"status"`
	ProductID        string `json:"product_id,omitempty"`
	CurrentPeriodEnd string `json:"current_period_end,omitempty"`
}
