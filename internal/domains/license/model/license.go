package model

import (
	"errors"
	"net/http"
	"time"
)

// License validity for the yearly plan.
const ValidityDays = 365

const StatusActive = "active"

// License là license key cấp sau khi thanh toán thành công.
// One license per (order_id, user_id); re-confirming the same payment
// returns the existing key instead of minting another.
type License struct {
	Code       string    `json:"licenseKey" db:"code"`
	OrderID    string    `json:"orderId" db:"order_id"`
	UserID     string    `json:"userId" db:"user_id"`
	LoginType  string    `json:"loginType,omitempty" db:"login_type"`
	Plan       string    `json:"plan" db:"plan"`
	Amount     int64     `json:"amount" db:"amount"`
	Status     string    `json:"status" db:"status"`
	PaymentKey string    `json:"paymentKey,omitempty" db:"payment_key"`
	BuyerName  string    `json:"buyerName,omitempty" db:"buyer_name"`
	BuyerEmail string    `json:"buyerEmail,omitempty" db:"buyer_email"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	ExpiresAt  time.Time `json:"expiresAt" db:"expires_at"`
}

// IsExpired reports whether the license has passed its expiry.
func (l *License) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

var ErrLicenseNotFound = errors.New("license not found")

type AppError struct {
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

var ErrNotFound = &AppError{
	Message:    "라이선스를 찾을 수 없습니다.",
	HTTPStatus: http.StatusNotFound,
}
