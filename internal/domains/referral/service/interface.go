package service

import (
	"context"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/identity"
)

// ServiceInterface định nghĩa business logic cho referral ledger
type ServiceInterface interface {
	// IssueOrGetCode mints the user's referral code, or returns the
	// existing account unchanged. alreadyExists distinguishes the two.
	IssueOrGetCode(ctx context.Context, user *identity.User) (account *model.ReferralAccount, alreadyExists bool, err error)

	// ValidateReferral computes a read-only discount quote for the
	// purchaser. No reservation is made.
	ValidateReferral(ctx context.Context, purchaser *identity.User, req *model.ValidateReferralRequest) (*model.DiscountQuote, error)

	// CreditIfQualifying credits the referrer once per qualifying
	// order. Best-effort: every failure is logged and returned, but
	// callers on the payment path must swallow it.
	CreditIfQualifying(ctx context.Context, input model.CreditInput) error

	// Summary builds the account owner's dashboard payload.
	Summary(ctx context.Context, user *identity.User) (*model.Summary, error)

	// RequestWithdrawal reserves amount out of the available balance
	// and queues a pending payout request.
	RequestWithdrawal(ctx context.Context, user *identity.User, req *model.CreateWithdrawalRequest) (*model.WithdrawalRequest, error)

	// ListWithdrawals returns the caller's withdrawal history, newest first.
	ListWithdrawals(ctx context.Context, userID string) ([]model.WithdrawalItem, error)

	// SettleWithdrawal applies an admin decision to a pending request.
	// Terminal: a processed request can never transition again.
	SettleWithdrawal(ctx context.Context, adminID string, withdrawalID string, req *model.SettleWithdrawalRequest) error

	// AdminList aggregates every rewarded referrer with their
	// withdrawal requests for the admin dashboard.
	AdminList(ctx context.Context) (*model.AdminList, error)
}
