package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/model"
)

// memoryRepo is an in-memory ReferralRepository with the same guarded
// update semantics as the SQL implementation.
type memoryRepo struct {
	mu          sync.Mutex
	accounts    map[string]*model.ReferralAccount
	usages      map[string]*model.ReferralUsage
	withdrawals map[uuid.UUID]*model.WithdrawalRequest

	failCreateWithdrawal bool
	codeAlwaysExists     bool
	staleUsageRead       bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		accounts:    make(map[string]*model.ReferralAccount),
		usages:      make(map[string]*model.ReferralUsage),
		withdrawals: make(map[uuid.UUID]*model.WithdrawalRequest),
	}
}

func (m *memoryRepo) GetAccountByUserID(_ context.Context, userID string) (*model.ReferralAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return nil, model.ErrNoAccount
	}
	clone := *account
	return &clone, nil
}

func (m *memoryRepo) GetAccountByCode(_ context.Context, code string) (*model.ReferralAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Code == code {
			clone := *account
			return &clone, nil
		}
	}
	return nil, model.ErrReferralNotFound
}

func (m *memoryRepo) CodeExists(_ context.Context, code string) (bool, error) {
	if m.codeAlwaysExists {
		return true, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) CreateAccount(_ context.Context, account *model.ReferralAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *account
	m.accounts[account.UserID] = &clone
	return nil
}

func (m *memoryRepo) ListRewardedAccounts(_ context.Context) ([]*model.ReferralAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var accounts []*model.ReferralAccount
	for _, account := range m.accounts {
		if account.TotalReward > 0 || account.PendingWithdrawalAmount > 0 {
			clone := *account
			accounts = append(accounts, &clone)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].TotalReward > accounts[j].TotalReward
	})
	return accounts, nil
}

func (m *memoryRepo) AddReward(_ context.Context, userID string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return model.ErrNoAccount
	}
	account.TotalReward += amount
	account.UsageCount++
	now := time.Now()
	account.LastRewardedAt = &now
	return nil
}

func (m *memoryRepo) ReservePending(_ context.Context, userID string, amount int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return false, nil
	}
	if account.TotalReward-account.PendingWithdrawalAmount-account.WithdrawnAmount < amount {
		return false, nil
	}
	account.PendingWithdrawalAmount += amount
	now := time.Now()
	account.LastWithdrawalRequestAt = &now
	return true, nil
}

func (m *memoryRepo) ReleasePending(_ context.Context, userID string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return model.ErrNoAccount
	}
	account.PendingWithdrawalAmount -= amount
	if account.PendingWithdrawalAmount < 0 {
		account.PendingWithdrawalAmount = 0
	}
	return nil
}

func (m *memoryRepo) CreateUsageIfAbsent(_ context.Context, usage *model.ReferralUsage) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.usages[usage.OrderID]; exists {
		return false, nil
	}
	// Per-user unique index: one redemption per purchaser, lifetime.
	for _, existing := range m.usages {
		if existing.UserID == usage.UserID {
			return false, nil
		}
	}
	clone := *usage
	m.usages[usage.OrderID] = &clone
	return true, nil
}

// HasUsageByUser honors staleUsageRead so tests can model the
// check-then-insert race between two orders by the same buyer.
func (m *memoryRepo) HasUsageByUser(_ context.Context, userID string) (bool, error) {
	if m.staleUsageRead {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, usage := range m.usages {
		if usage.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) ListUsagesByReferrer(_ context.Context, referrerUserID string, limit int) ([]*model.ReferralUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var usages []*model.ReferralUsage
	for _, usage := range m.usages {
		if usage.ReferrerUserID == referrerUserID {
			clone := *usage
			usages = append(usages, &clone)
		}
	}
	sort.Slice(usages, func(i, j int) bool {
		return usages[i].CreatedAt.After(usages[j].CreatedAt)
	})
	if len(usages) > limit {
		usages = usages[:limit]
	}
	return usages, nil
}

func (m *memoryRepo) CreateWithdrawal(_ context.Context, request *model.WithdrawalRequest) error {
	if m.failCreateWithdrawal {
		return context.DeadlineExceeded
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *request
	m.withdrawals[request.ID] = &clone
	return nil
}

func (m *memoryRepo) GetWithdrawalByID(_ context.Context, id uuid.UUID) (*model.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	withdrawal, ok := m.withdrawals[id]
	if !ok {
		return nil, model.ErrWithdrawalNotFound
	}
	clone := *withdrawal
	return &clone, nil
}

func (m *memoryRepo) ListWithdrawalsByUser(_ context.Context, userID string, limit int) ([]*model.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var withdrawals []*model.WithdrawalRequest
	for _, withdrawal := range m.withdrawals {
		if withdrawal.UserID == userID {
			clone := *withdrawal
			withdrawals = append(withdrawals, &clone)
		}
	}
	sort.Slice(withdrawals, func(i, j int) bool {
		return withdrawals[i].CreatedAt.After(withdrawals[j].CreatedAt)
	})
	if len(withdrawals) > limit {
		withdrawals = withdrawals[:limit]
	}
	return withdrawals, nil
}

func (m *memoryRepo) ListAllWithdrawals(_ context.Context) ([]*model.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var withdrawals []*model.WithdrawalRequest
	for _, withdrawal := range m.withdrawals {
		clone := *withdrawal
		withdrawals = append(withdrawals, &clone)
	}
	sort.Slice(withdrawals, func(i, j int) bool {
		return withdrawals[i].CreatedAt.After(withdrawals[j].CreatedAt)
	})
	return withdrawals, nil
}

func (m *memoryRepo) SettleWithdrawal(_ context.Context, id uuid.UUID, status model.WithdrawalStatus, processedBy, notes string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	withdrawal, ok := m.withdrawals[id]
	if !ok || withdrawal.Status != model.WithdrawalPending {
		return false, nil
	}

	account, ok := m.accounts[withdrawal.UserID]
	if !ok {
		return false, model.ErrNoAccount
	}

	now := time.Now()
	withdrawal.Status = status
	withdrawal.ProcessedBy = processedBy
	withdrawal.Notes = notes
	withdrawal.ProcessedAt = &now
	withdrawal.UpdatedAt = now

	account.PendingWithdrawalAmount -= withdrawal.Amount
	if account.PendingWithdrawalAmount < 0 {
		account.PendingWithdrawalAmount = 0
	}
	if status == model.WithdrawalCompleted {
		account.WithdrawnAmount += withdrawal.Amount
	}
	account.LastWithdrawalProcessedAt = &now
	return true, nil
}
