package model

import (
	"errors"
	"time"
)

// Trial lifetime and key shape. Trial keys use the full A-Z0-9
// alphabet; they are short-lived and only ever pasted, not retyped.
const (
	ValidityHours = 24
	CodeLength    = 6
	CodeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// Trial은 계정당 1회 발급되는 무료 체험 코드.
type Trial struct {
	Code         string    `json:"trialCode" db:"code"`
	UserID       string    `json:"userId" db:"user_id"`
	LoginType    string    `json:"loginType,omitempty" db:"login_type"`
	Nickname     string    `json:"nickname,omitempty" db:"nickname"`
	Email        string    `json:"email,omitempty" db:"email"`
	ProfileImage string    `json:"profileImage,omitempty" db:"profile_image"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	ExpiresAt    time.Time `json:"expiresAt" db:"expires_at"`
}

// EffectiveStatus derives the live status from the expiry timestamp;
// the stored status column is never updated by a background job.
func (t *Trial) EffectiveStatus(now time.Time) string {
	if now.After(t.ExpiresAt) {
		return StatusExpired
	}
	return t.Status
}

func (t *Trial) RemainingSeconds(now time.Time) int64 {
	remaining := int64(t.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

var (
	ErrTrialNotFound = errors.New("trial not found")
	ErrAlreadyIssued = errors.New("trial already issued for this account")
)
