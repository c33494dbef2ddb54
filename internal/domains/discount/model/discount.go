package model

import (
	"errors"
	"time"
)

// First-purchase discount coupon: flat 10,000 KRW off the yearly
// plan, valid for 24 hours from issuance.
const (
	CodePrefix     = "DISC"
	CodeLength     = 6
	CodeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	DiscountAmount = 10000
	OriginalPrice  = 239000
	ValidityHours  = 24
)

const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// DiscountCode은 유저당 하나만 존재. Re-issuing while a code is still
// valid returns the same code; expired codes are replaced in place.
type DiscountCode struct {
	UserID          string    `json:"userId" db:"user_id"`
	Code            string    `json:"code" db:"code"`
	LoginType       string    `json:"loginType,omitempty" db:"login_type"`
	Nickname        string    `json:"nickname,omitempty" db:"nickname"`
	DiscountAmount  int64     `json:"discountAmount" db:"discount_amount"`
	OriginalPrice   int64     `json:"originalPrice" db:"original_price"`
	DiscountedPrice int64     `json:"discountedPrice" db:"discounted_price"`
	IsUsed          bool      `json:"isUsed" db:"is_used"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	ExpiresAt       time.Time `json:"expiresAt" db:"expires_at"`
}

func (d *DiscountCode) IsExpired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}

func (d *DiscountCode) EffectiveStatus(now time.Time) string {
	if d.IsExpired(now) {
		return StatusExpired
	}
	return d.Status
}

var ErrDiscountNotFound = errors.New("discount code not found")
