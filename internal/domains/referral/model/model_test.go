package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatWon(t *testing.T) {
	assert.Equal(t, "0", FormatWon(0))
	assert.Equal(t, "999", FormatWon(999))
	assert.Equal(t, "1,000", FormatWon(1000))
	assert.Equal(t, "12,345", FormatWon(12345))
	assert.Equal(t, "1,234,567", FormatWon(1234567))
	assert.Equal(t, "-1,234,567", FormatWon(-1234567))
}

func TestNewInsufficientBalanceError(t *testing.T) {
	err := NewInsufficientBalanceError(12345)
	assert.Equal(t, "출금 가능 금액은 ₩12,345 입니다.", err.Message)
	assert.Equal(t, 400, err.HTTPStatus)
}

func TestAvailableAmount(t *testing.T) {
	account := &ReferralAccount{TotalReward: 100, PendingWithdrawalAmount: 30, WithdrawnAmount: 20}
	assert.Equal(t, int64(50), account.AvailableAmount())

	// Never negative, even if the stored counters drift.
	account = &ReferralAccount{TotalReward: 10, PendingWithdrawalAmount: 20}
	assert.Equal(t, int64(0), account.AvailableAmount())
}

func TestWithdrawalStatusTerminal(t *testing.T) {
	assert.False(t, WithdrawalPending.IsTerminal())
	assert.True(t, WithdrawalCompleted.IsTerminal())
	assert.True(t, WithdrawalRejected.IsTerminal())
}

func TestValidateReferralRequest(t *testing.T) {
	req := ValidateReferralRequest{Code: "  abcd2345 "}
	req.NormalizeCode()
	assert.Equal(t, "ABCD2345", req.Code)
	assert.NoError(t, req.Validate())

	empty := ValidateReferralRequest{}
	assert.Error(t, empty.Validate())

	assert.Equal(t, int64(239000), ValidateReferralRequest{}.BasePrice())
	assert.Equal(t, int64(100000), ValidateReferralRequest{OriginalPrice: 100000}.BasePrice())
}

func TestCreateWithdrawalRequestValidation(t *testing.T) {
	valid := CreateWithdrawalRequest{Amount: 10000, AccountNumber: "110-1234-5678", AccountHolder: "김철수"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, CreateWithdrawalRequest{Amount: 0, AccountNumber: "110-1234-5678", AccountHolder: "김철수"}.Validate())
	assert.Error(t, CreateWithdrawalRequest{Amount: -1, AccountNumber: "110-1234-5678", AccountHolder: "김철수"}.Validate())
	assert.Error(t, CreateWithdrawalRequest{Amount: 10000, AccountNumber: "123", AccountHolder: "김철수"}.Validate())
	assert.Error(t, CreateWithdrawalRequest{Amount: 10000, AccountNumber: "110-1234-5678"}.Validate())
}

func TestSettleWithdrawalRequestValidation(t *testing.T) {
	assert.NoError(t, SettleWithdrawalRequest{Status: WithdrawalCompleted}.Validate())
	assert.NoError(t, SettleWithdrawalRequest{Status: WithdrawalRejected}.Validate())
	assert.Error(t, SettleWithdrawalRequest{Status: WithdrawalPending}.Validate())
	assert.Error(t, SettleWithdrawalRequest{Status: "done"}.Validate())
	assert.Error(t, SettleWithdrawalRequest{}.Validate())
}
