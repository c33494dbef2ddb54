package model

import (
	"time"

	"github.com/google/uuid"
)

// Plan names accepted by the crediting path. Only the paid yearly
// plan ever credits a reward.
const (
	PlanYearly = "yearly"
	PlanTrial  = "trial"
)

// Pricing of the yearly plan and the two referral rates. The reward
// rate (referrer side) is deliberately different from the discount
// rate (purchaser side).
const (
	DefaultBasePrice int64 = 239000
	DiscountRate           = 0.05
	RewardRate             = 0.10
)

// WithdrawalStatus state machine: pending → completed | rejected.
// Both non-pending states are terminal.
type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalCompleted || s == WithdrawalRejected
}

// ReferralAccount is the per-user referral ledger document. One per
// user who has requested a code; user_id is the primary key. All
// monetary fields are whole KRW.
//
// Invariant: PendingWithdrawalAmount + WithdrawnAmount <= TotalReward.
// The four counters are only ever mutated through atomic SQL
// increments, never read-modify-write.
type ReferralAccount struct {
	UserID                    string     `json:"userId" db:"user_id"`
	Code                      string     `json:"code" db:"code"`
	LoginType                 string     `json:"loginType,omitempty" db:"login_type"`
	OwnerName                 string     `json:"ownerName" db:"owner_name"`
	OwnerEmail                string     `json:"ownerEmail,omitempty" db:"owner_email"`
	TotalReward               int64      `json:"totalReward" db:"total_reward"`
	UsageCount                int        `json:"usageCount" db:"usage_count"`
	PendingWithdrawalAmount   int64      `json:"pendingWithdrawalAmount" db:"pending_withdrawal_amount"`
	WithdrawnAmount           int64      `json:"withdrawnAmount" db:"withdrawn_amount"`
	CreatedAt                 time.Time  `json:"createdAt" db:"created_at"`
	LastRewardedAt            *time.Time `json:"lastRewardedAt,omitempty" db:"last_rewarded_at"`
	LastWithdrawalRequestAt   *time.Time `json:"lastWithdrawalRequestAt,omitempty" db:"last_withdrawal_request_at"`
	LastWithdrawalProcessedAt *time.Time `json:"lastWithdrawalProcessedAt,omitempty" db:"last_withdrawal_processed_at"`
}

// AvailableAmount là số tiền còn có thể rút, floored at zero.
func (a *ReferralAccount) AvailableAmount() int64 {
	available := a.TotalReward - a.PendingWithdrawalAmount - a.WithdrawnAmount
	if available < 0 {
		return 0
	}
	return available
}

// ReferralUsage records one qualifying purchase that redeemed a code.
// order_id is the primary key and the idempotency guard against
// duplicate payment callbacks. Created exactly once, never mutated.
type ReferralUsage struct {
	OrderID        string    `json:"orderId" db:"order_id"`
	UserID         string    `json:"userId" db:"user_id"`
	LoginType      string    `json:"loginType,omitempty" db:"login_type"`
	ReferrerUserID string    `json:"referrerUserId" db:"referrer_user_id"`
	ReferralCode   string    `json:"referralCode" db:"referral_code"`
	Plan           string    `json:"plan" db:"plan"`
	Amount         int64     `json:"amount" db:"amount"`
	RewardAmount   int64     `json:"rewardAmount" db:"reward_amount"`
	DiscountRate   float64   `json:"discountRate" db:"discount_rate"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// WithdrawalRequest is one payout request against the available balance.
type WithdrawalRequest struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	UserID        string           `json:"userId" db:"user_id"`
	ReferralCode  string           `json:"referralCode,omitempty" db:"referral_code"`
	OwnerName     string           `json:"ownerName,omitempty" db:"owner_name"`
	OwnerEmail    string           `json:"ownerEmail,omitempty" db:"owner_email"`
	Amount        int64            `json:"amount" db:"amount"`
	AccountNumber string           `json:"accountNumber" db:"account_number"`
	AccountHolder string           `json:"accountHolder" db:"account_holder"`
	Status        WithdrawalStatus `json:"status" db:"status"`
	Notes         string           `json:"notes,omitempty" db:"notes"`
	ProcessedBy   string           `json:"processedBy,omitempty" db:"processed_by"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`
	ProcessedAt   *time.Time       `json:"processedAt,omitempty" db:"processed_at"`
}
