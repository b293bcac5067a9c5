package auth

import "time"

// UserSummary is the public view of an account.
type UserSummary struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken      string      `json:"accessToken"`
	RefreshToken     string      `json:"refreshToken"`
	TokenType        string      `json:"tokenType"`
	ExpiresIn        int64       `json:"expiresIn"` // seconds
	ExpiresAt        time.Time   `json:"expiresAt"`
	RefreshExpiresAt time.Time   `json:"refreshExpiresAt"`
	User             UserSummary `json:"user"`
}

// ForgotPasswordResponse confirms a code was sent. The code itself is never returned.
type ForgotPasswordResponse struct {
	Email      string    `json:"email"`
	ExpiresAt  time.Time `json:"expiresAt"`
	TTLMinutes int       `json:"ttlMinutes"`
}

// ResetAttemptItem is one entry of GET /password-resets.
type ResetAttemptItem struct {
	ID           string     `json:"id"`
	GeneratedAt  time.Time  `json:"generatedAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
	AttemptCount int        `json:"attemptCount"`
	Status       string     `json:"status"`
}

// ResetHistoryResponse lists the caller's most recent reset attempts.
type ResetHistoryResponse struct {
	Items []ResetAttemptItem `json:"items"`
}
