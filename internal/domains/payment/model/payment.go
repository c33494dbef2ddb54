package model

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PrepareRequest is what the checkout page sends before opening the
// payment widget. Codes are optional and mutually exclusive in
// practice; the referral code wins when both are sent.
type PrepareRequest struct {
	Plan         string `json:"plan"`
	ReferralCode string `json:"referralCode"`
	DiscountCode string `json:"discountCode"`
}

func (r PrepareRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Plan,
			validation.Required.Error("플랜을 선택해주세요."),
			validation.In("yearly").Error("지원하지 않는 플랜입니다."),
		),
	)
}

// PreparedOrder is staged server-side so the success callback can
// verify the amount the client paid against the amount we quoted.
type PreparedOrder struct {
	OrderID      string    `json:"orderId"`
	UserID       string    `json:"userId"`
	LoginType    string    `json:"loginType,omitempty"`
	Plan         string    `json:"plan"`
	Amount       int64     `json:"amount"`
	ReferralCode string    `json:"referralCode,omitempty"`
	DiscountCode string    `json:"discountCode,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PaymentConfirmed is the post-confirmation event. Consumers run after
// the gateway has accepted the money; none of them can fail the
// payment anymore.
type PaymentConfirmed struct {
	OrderID      string
	PaymentKey   string
	UserID       string
	LoginType    string
	BuyerName    string
	BuyerEmail   string
	Plan         string
	Amount       int64
	ReferralCode string
}

// Consumer reacts to a confirmed payment. Errors are logged by the
// dispatcher and never surfaced to the buyer.
type Consumer interface {
	Name() string
	HandlePaymentConfirmed(ctx context.Context, event PaymentConfirmed) error
}
