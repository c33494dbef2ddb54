package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// -------------------------------------------------------------------
// REQUESTS
// -------------------------------------------------------------------

// ValidateReferralRequest - Request để validate referral code tại checkout
type ValidateReferralRequest struct {
	Code          string `json:"code"`
	OriginalPrice int64  `json:"originalPrice"`
	Plan          string `json:"plan"`
}

func (r ValidateReferralRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.Error("추천인 코드를 입력해주세요."),
		),
		validation.Field(&r.OriginalPrice,
			validation.Min(int64(0)).Error("가격이 유효하지 않습니다."),
		),
	)
}

// NormalizeCode trims and uppercases the candidate code.
func (r *ValidateReferralRequest) NormalizeCode() {
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
}

// BasePrice returns the price the quote is computed against,
// falling back to the list price when the caller sent none.
func (r ValidateReferralRequest) BasePrice() int64 {
	if r.OriginalPrice > 0 {
		return r.OriginalPrice
	}
	return DefaultBasePrice
}

// CreateWithdrawalRequest - Request để tạo withdrawal
type CreateWithdrawalRequest struct {
	Amount        int64  `json:"amount"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
}

func (r CreateWithdrawalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount,
			validation.Required.Error("유효한 출금 금액을 입력해주세요."),
			validation.Min(int64(1)).Error("유효한 출금 금액을 입력해주세요."),
		),
		validation.Field(&r.AccountNumber,
			validation.Required.Error("유효한 계좌번호를 입력해주세요."),
			validation.Length(6, 0).Error("유효한 계좌번호를 입력해주세요."),
		),
		validation.Field(&r.AccountHolder,
			validation.Required.Error("예금주 이름을 입력해주세요."),
		),
	)
}

// Normalize trims the free-text payout fields.
func (r *CreateWithdrawalRequest) Normalize() {
	r.AccountNumber = strings.TrimSpace(r.AccountNumber)
	r.AccountHolder = strings.TrimSpace(r.AccountHolder)
}

// SettleWithdrawalRequest - Admin decision on a pending withdrawal
type SettleWithdrawalRequest struct {
	Status WithdrawalStatus `json:"status"`
	Notes  string           `json:"notes"`
}

func (r SettleWithdrawalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required.Error("유효한 상태(completed, rejected)를 지정해주세요."),
			validation.In(WithdrawalCompleted, WithdrawalRejected).
				Error("유효한 상태(completed, rejected)를 지정해주세요."),
		),
	)
}

// CreditInput carries everything the crediting path needs from a
// confirmed payment. Fire-and-forget: the payment flow never waits on
// or fails because of it.
type CreditInput struct {
	OrderID            string
	PurchaserUserID    string
	PurchaserLoginType string
	Amount             int64
	Plan               string
	ReferralCode       string
}

// -------------------------------------------------------------------
// RESPONSES
// -------------------------------------------------------------------

// DiscountQuote is the ephemeral result of a validation call. It is
// never persisted and carries no reservation; eligibility is
// re-checked at credit time against live ledger state.
type DiscountQuote struct {
	ReferralCode    string  `json:"referralCode"`
	ReferrerUserID  string  `json:"referrerUserId"`
	ReferrerName    string  `json:"referrerName"`
	Plan            string  `json:"plan"`
	OriginalPrice   int64   `json:"originalPrice"`
	DiscountedPrice int64   `json:"discountedPrice"`
	DiscountAmount  int64   `json:"discountAmount"`
	DiscountRate    float64 `json:"discountRate"`
}

// UsageItem is one row of the referrer's reward history.
type UsageItem struct {
	OrderID      string    `json:"orderId"`
	Amount       int64     `json:"amount"`
	RewardAmount int64     `json:"rewardAmount"`
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WithdrawalItem is one row of the withdrawal history.
type WithdrawalItem struct {
	ID            string     `json:"id"`
	Amount        int64      `json:"amount"`
	AccountNumber string     `json:"accountNumber"`
	AccountHolder string     `json:"accountHolder"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// Summary is the GET /referrals/me payload.
type Summary struct {
	HasCode                 bool             `json:"hasCode"`
	Referral                *ReferralAccount `json:"referral"`
	TotalReward             int64            `json:"totalReward"`
	UsageCount              int              `json:"usageCount"`
	PendingWithdrawal       int64            `json:"pendingWithdrawalAmount"`
	WithdrawnAmount         int64            `json:"withdrawnAmount"`
	ReferralUsages          []UsageItem      `json:"referralUsages"`
	Withdrawals             []WithdrawalItem `json:"withdrawals"`
	HasUsedReferralDiscount bool             `json:"hasUsedReferralDiscount"`
}

// AdminWithdrawalInfo is the per-request view on the admin dashboard.
type AdminWithdrawalInfo struct {
	ID            string     `json:"id"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	AccountHolder string     `json:"accountHolder,omitempty"`
}

// AdminReferralItem is one referrer row on the admin dashboard.
type AdminReferralItem struct {
	UserID                  string                `json:"userId"`
	Code                    string                `json:"code"`
	OwnerName               string                `json:"ownerName"`
	OwnerEmail              string                `json:"ownerEmail,omitempty"`
	LoginType               string                `json:"loginType,omitempty"`
	TotalReward             int64                 `json:"totalReward"`
	UsageCount              int                   `json:"usageCount"`
	CreatedAt               time.Time             `json:"createdAt"`
	LastRewardedAt          *time.Time            `json:"lastRewardedAt,omitempty"`
	PendingWithdrawal       int64                 `json:"pendingWithdrawalAmount"`
	WithdrawnAmount         int64                 `json:"withdrawnAmount"`
	LastWithdrawalRequestAt *time.Time            `json:"lastWithdrawalRequestAt,omitempty"`
	HasPendingWithdrawal    bool                  `json:"hasPendingWithdrawal"`
	LatestWithdrawal        *AdminWithdrawalInfo  `json:"latestWithdrawal"`
	WithdrawalRequests      []AdminWithdrawalInfo `json:"withdrawalRequests"`
}

// AdminList is the GET /referrals/list payload.
type AdminList struct {
	Referrals               []AdminReferralItem `json:"referrals"`
	TotalReward             int64               `json:"totalReward"`
	TotalUsageCount         int                 `json:"totalUsageCount"`
	TotalPendingWithdrawals int64               `json:"totalPendingWithdrawals"`
}
