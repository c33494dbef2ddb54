package model

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

var ErrCodeExhausted = errors.New("referral code keyspace exhausted after max attempts")

type ErrorCode string

const (
	ErrCodeReferralNotFound    ErrorCode = "REFERRAL_NOT_FOUND"      // 404
	ErrCodeSelfReferral        ErrorCode = "REFERRAL_SELF"           // 400
	ErrCodeAlreadyUsed         ErrorCode = "REFERRAL_ALREADY_USED"   // 400
	ErrCodeNoAccount           ErrorCode = "REFERRAL_NO_ACCOUNT"     // 400
	ErrCodeInsufficientBalance ErrorCode = "WITHDRAWAL_INSUFFICIENT" // 400
	ErrCodeWithdrawalNotFound  ErrorCode = "WITHDRAWAL_NOT_FOUND"    // 404
	ErrCodeAlreadyProcessed    ErrorCode = "WITHDRAWAL_PROCESSED"    // 409
	ErrCodeInvalidAmount       ErrorCode = "WITHDRAWAL_BAD_AMOUNT"   // 400
	ErrCodeGenerateFailed      ErrorCode = "REFERRAL_GENERATE_FAIL"  // 500
)

type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Predefined errors. Messages are user-facing.
var (
	ErrReferralNotFound = &AppError{
		Code:       ErrCodeReferralNotFound,
		Message:    "존재하지 않는 추천인 코드입니다.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrSelfReferral = &AppError{
		Code:       ErrCodeSelfReferral,
		Message:    "본인 추천인 코드는 사용할 수 없습니다.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrAlreadyUsed = &AppError{
		Code:       ErrCodeAlreadyUsed,
		Message:    "추천인 할인은 계정당 1회만 사용할 수 있습니다.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrNoAccount = &AppError{
		Code:       ErrCodeNoAccount,
		Message:    "추천인 코드가 존재하지 않습니다.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrWithdrawalNotFound = &AppError{
		Code:       ErrCodeWithdrawalNotFound,
		Message:    "출금 신청을 찾을 수 없습니다.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrAlreadyProcessed = &AppError{
		Code:       ErrCodeAlreadyProcessed,
		Message:    "이미 처리된 출금 신청입니다.",
		HTTPStatus: http.StatusConflict,
	}

	ErrInvalidAmount = &AppError{
		Code:       ErrCodeInvalidAmount,
		Message:    "출금 금액이 유효하지 않습니다.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrGenerateFailed = &AppError{
		Code:       ErrCodeGenerateFailed,
		Message:    "고유한 추천인 코드를 생성하지 못했습니다.",
		HTTPStatus: http.StatusInternalServerError,
	}
)

// NewInsufficientBalanceError reports the exact available amount so the
// caller can correct the request without another round trip.
func NewInsufficientBalanceError(available int64) *AppError {
	return &AppError{
		Code:       ErrCodeInsufficientBalance,
		Message:    fmt.Sprintf("출금 가능 금액은 ₩%s 입니다.", FormatWon(available)),
		HTTPStatus: http.StatusBadRequest,
	}
}

// FormatWon renders an amount with thousands separators (1234567 → "1,234,567").
func FormatWon(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}

	if negative {
		return "-" + string(out)
	}
	return string(out)
}
