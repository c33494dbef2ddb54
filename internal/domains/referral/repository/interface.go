package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/model"
)

// ReferralRepository định nghĩa interface cho referral ledger data access.
//
// Every mutation of the four monetary counters goes through an atomic
// single-statement increment; there is deliberately no "save whole
// account" write.
type ReferralRepository interface {
	// Accounts
	GetAccountByUserID(ctx context.Context, userID string) (*model.ReferralAccount, error)
	GetAccountByCode(ctx context.Context, code string) (*model.ReferralAccount, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	CreateAccount(ctx context.Context, account *model.ReferralAccount) error
	ListRewardedAccounts(ctx context.Context) ([]*model.ReferralAccount, error)

	// Atomic ledger mutations
	AddReward(ctx context.Context, userID string, amount int64) error
	ReservePending(ctx context.Context, userID string, amount int64) (bool, error)
	ReleasePending(ctx context.Context, userID string, amount int64) error

	// Usages
	CreateUsageIfAbsent(ctx context.Context, usage *model.ReferralUsage) (bool, error)
	HasUsageByUser(ctx context.Context, userID string) (bool, error)
	ListUsagesByReferrer(ctx context.Context, referrerUserID string, limit int) ([]*model.ReferralUsage, error)

	// Withdrawals
	CreateWithdrawal(ctx context.Context, request *model.WithdrawalRequest) error
	GetWithdrawalByID(ctx context.Context, id uuid.UUID) (*model.WithdrawalRequest, error)
	ListWithdrawalsByUser(ctx context.Context, userID string, limit int) ([]*model.WithdrawalRequest, error)
	ListAllWithdrawals(ctx context.Context) ([]*model.WithdrawalRequest, error)
	// SettleWithdrawal transitions a pending request to its terminal
	// status and moves the reserved funds in the same transaction.
	// Returns false when the request was already processed.
	SettleWithdrawal(ctx context.Context, id uuid.UUID, status model.WithdrawalStatus, processedBy, notes string) (bool, error)
}
