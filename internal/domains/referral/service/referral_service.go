package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/repository"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/identity"
	"github.com/dlwnstjrzz/autobomber-website/pkg/logger"
)

// historyLimit caps the usage/withdrawal lists on the owner dashboard.
const historyLimit = 20

type referralService struct {
	repo       repository.ReferralRepository
	calculator *RewardCalculator
}

func NewReferralService(repo repository.ReferralRepository) ServiceInterface {
	return &referralService{
		repo:       repo,
		calculator: NewRewardCalculator(),
	}
}

// -------------------------------------------------------------------
// CODE ISSUANCE
// -------------------------------------------------------------------

func (s *referralService) IssueOrGetCode(ctx context.Context, user *identity.User) (*model.ReferralAccount, bool, error) {
	existing, err := s.repo.GetAccountByUserID(ctx, user.UserID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, model.ErrNoAccount) {
		return nil, false, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		if errors.Is(err, model.ErrCodeExhausted) {
			return nil, false, model.ErrGenerateFailed
		}
		return nil, false, err
	}

	account := &model.ReferralAccount{
		UserID:     user.UserID,
		Code:       code,
		LoginType:  user.LoginType,
		OwnerName:  user.DisplayName,
		OwnerEmail: user.Email,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		// Two concurrent first calls can race past the existence check;
		// the user_id primary key rejects the loser, whose account
		// already exists by then.
		if fresh, getErr := s.repo.GetAccountByUserID(ctx, user.UserID); getErr == nil {
			return fresh, true, nil
		}
		return nil, false, err
	}

	return account, false, nil
}

// uniqueCode generates a candidate and checks for collision, bounded
// at maxCodeAttempts. With a 32^8 keyspace a collision is nearly
// impossible, but the bound must hold — no infinite retry.
func (s *referralService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate, err := generateCode(codeLength)
		if err != nil {
			return "", err
		}

		exists, err := s.repo.CodeExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %d attempts", model.ErrCodeExhausted, maxCodeAttempts)
}

// -------------------------------------------------------------------
// DISCOUNT VALIDATION
// -------------------------------------------------------------------

func (s *referralService) ValidateReferral(ctx context.Context, purchaser *identity.User, req *model.ValidateReferralRequest) (*model.DiscountQuote, error) {
	req.NormalizeCode()

	account, err := s.repo.GetAccountByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	if account.UserID == purchaser.UserID {
		return nil, model.ErrSelfReferral
	}

	used, err := s.repo.HasUsageByUser(ctx, purchaser.UserID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, model.ErrAlreadyUsed
	}

	basePrice := req.BasePrice()
	discountedPrice, discountAmount := s.calculator.Quote(basePrice)

	plan := req.Plan
	if plan == "" {
		plan = model.PlanYearly
	}

	referrerName := account.OwnerName
	if referrerName == "" {
		referrerName = "추천인"
	}

	return &model.DiscountQuote{
		ReferralCode:    account.Code,
		ReferrerUserID:  account.UserID,
		ReferrerName:    referrerName,
		Plan:            plan,
		OriginalPrice:   basePrice,
		DiscountedPrice: discountedPrice,
		DiscountAmount:  discountAmount,
		DiscountRate:    model.DiscountRate,
	}, nil
}

// -------------------------------------------------------------------
// REWARD CREDITING
// -------------------------------------------------------------------

// CreditIfQualifying runs on the payment-confirmed path. Every
// early-exit leaves the ledger untouched; only step 5→6 mutates, and
// the usage insert keyed on order_id is what makes repeated gateway
// callbacks a no-op.
func (s *referralService) CreditIfQualifying(ctx context.Context, input model.CreditInput) error {
	if input.ReferralCode == "" || input.OrderID == "" {
		return nil
	}
	if input.Plan != model.PlanYearly {
		return nil
	}
	if input.Amount <= 0 {
		logger.Warn("추천인 보상 계산 실패 - 금액이 유효하지 않습니다.", map[string]interface{}{
			"orderId": input.OrderID,
			"amount":  input.Amount,
		})
		return model.ErrInvalidAmount
	}
	if input.PurchaserUserID == "" {
		logger.Warn("추천인 보상을 적용할 수 없습니다 - 사용자 정보 없음", map[string]interface{}{
			"orderId":      input.OrderID,
			"referralCode": input.ReferralCode,
		})
		return model.ErrNoAccount
	}

	code := strings.ToUpper(strings.TrimSpace(input.ReferralCode))

	account, err := s.repo.GetAccountByCode(ctx, code)
	if err != nil {
		logger.Warn("추천인 코드를 찾을 수 없습니다.", map[string]interface{}{
			"referralCode": code,
		})
		return err
	}

	if account.UserID == input.PurchaserUserID {
		logger.Warn("추천인 코드가 잘못되었거나 본인 코드입니다.", map[string]interface{}{
			"purchaserId":   input.PurchaserUserID,
			"referralOwner": account.UserID,
		})
		return model.ErrSelfReferral
	}

	used, err := s.repo.HasUsageByUser(ctx, input.PurchaserUserID)
	if err != nil {
		return err
	}
	if used {
		logger.Warn("사용자는 이미 추천인 할인을 사용했습니다.", map[string]interface{}{
			"purchaserId": input.PurchaserUserID,
			"orderId":     input.OrderID,
		})
		return model.ErrAlreadyUsed
	}

	rewardAmount := s.calculator.Reward(input.Amount)
	if rewardAmount <= 0 {
		return model.ErrInvalidAmount
	}

	usage := &model.ReferralUsage{
		OrderID:        input.OrderID,
		UserID:         input.PurchaserUserID,
		LoginType:      input.PurchaserLoginType,
		ReferrerUserID: account.UserID,
		ReferralCode:   account.Code,
		Plan:           input.Plan,
		Amount:         input.Amount,
		RewardAmount:   rewardAmount,
		DiscountRate:   model.DiscountRate,
		CreatedAt:      time.Now(),
	}

	inserted, err := s.repo.CreateUsageIfAbsent(ctx, usage)
	if err != nil {
		return err
	}
	if !inserted {
		logger.Info("추천인 보상이 이미 처리되었습니다.", map[string]interface{}{
			"orderId": input.OrderID,
		})
		return nil
	}

	if err := s.repo.AddReward(ctx, account.UserID, rewardAmount); err != nil {
		// The usage row exists but the counter increment failed.
		// There is no retry here; reconciliation is out-of-band.
		logger.Error("추천인 보상 적립 실패", err)
		return err
	}

	logger.Info("추천인 보상 적용 완료", map[string]interface{}{
		"orderId":      input.OrderID,
		"referralCode": account.Code,
		"rewardAmount": rewardAmount,
	})
	return nil
}

// -------------------------------------------------------------------
// OWNER DASHBOARD
// -------------------------------------------------------------------

func (s *referralService) Summary(ctx context.Context, user *identity.User) (*model.Summary, error) {
	account, err := s.repo.GetAccountByUserID(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNoAccount) {
			return &model.Summary{
				HasCode:        false,
				ReferralUsages: []model.UsageItem{},
				Withdrawals:    []model.WithdrawalItem{},
			}, nil
		}
		return nil, err
	}

	used, err := s.repo.HasUsageByUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	usages, err := s.repo.ListUsagesByReferrer(ctx, user.UserID, historyLimit)
	if err != nil {
		return nil, err
	}

	withdrawals, err := s.repo.ListWithdrawalsByUser(ctx, user.UserID, historyLimit)
	if err != nil {
		return nil, err
	}

	usageItems := make([]model.UsageItem, 0, len(usages))
	for _, usage := range usages {
		usageItems = append(usageItems, model.UsageItem{
			OrderID:      usage.OrderID,
			Amount:       usage.Amount,
			RewardAmount: usage.RewardAmount,
			Plan:         usage.Plan,
			CreatedAt:    usage.CreatedAt,
		})
	}

	return &model.Summary{
		HasCode:                 true,
		Referral:                account,
		TotalReward:             account.TotalReward,
		UsageCount:              account.UsageCount,
		PendingWithdrawal:       account.PendingWithdrawalAmount,
		WithdrawnAmount:         account.WithdrawnAmount,
		ReferralUsages:          usageItems,
		Withdrawals:             toWithdrawalItems(withdrawals),
		HasUsedReferralDiscount: used,
	}, nil
}

// -------------------------------------------------------------------
// WITHDRAWALS
// -------------------------------------------------------------------

func (s *referralService) RequestWithdrawal(ctx context.Context, user *identity.User, req *model.CreateWithdrawalRequest) (*model.WithdrawalRequest, error) {
	account, err := s.repo.GetAccountByUserID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	if req.Amount > account.AvailableAmount() {
		return nil, model.NewInsufficientBalanceError(account.AvailableAmount())
	}

	// The reservation is a guarded atomic increment, so a concurrent
	// request for the same account cannot push pending past the
	// available balance; the loser sees reserved == false.
	reserved, err := s.repo.ReservePending(ctx, user.UserID, req.Amount)
	if err != nil {
		return nil, err
	}
	if !reserved {
		fresh, freshErr := s.repo.GetAccountByUserID(ctx, user.UserID)
		if freshErr != nil {
			return nil, freshErr
		}
		return nil, model.NewInsufficientBalanceError(fresh.AvailableAmount())
	}

	ownerName := account.OwnerName
	if ownerName == "" {
		ownerName = user.DisplayName
	}
	ownerEmail := account.OwnerEmail
	if ownerEmail == "" {
		ownerEmail = user.Email
	}

	withdrawal := &model.WithdrawalRequest{
		ID:            uuid.New(),
		UserID:        user.UserID,
		ReferralCode:  account.Code,
		OwnerName:     ownerName,
		OwnerEmail:    ownerEmail,
		Amount:        req.Amount,
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
		Status:        model.WithdrawalPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.repo.CreateWithdrawal(ctx, withdrawal); err != nil {
		// Compensate the reservation so the funds return to the
		// available pool instead of leaking into pending forever.
		if releaseErr := s.repo.ReleasePending(ctx, user.UserID, req.Amount); releaseErr != nil {
			logger.Error("출금 예약 복구 실패", releaseErr)
		}
		return nil, err
	}

	return withdrawal, nil
}

func (s *referralService) ListWithdrawals(ctx context.Context, userID string) ([]model.WithdrawalItem, error) {
	withdrawals, err := s.repo.ListWithdrawalsByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	return toWithdrawalItems(withdrawals), nil
}

func (s *referralService) SettleWithdrawal(ctx context.Context, adminID string, withdrawalID string, req *model.SettleWithdrawalRequest) error {
	id, err := uuid.Parse(withdrawalID)
	if err != nil {
		return model.ErrWithdrawalNotFound
	}

	withdrawal, err := s.repo.GetWithdrawalByID(ctx, id)
	if err != nil {
		return err
	}

	if withdrawal.Status.IsTerminal() {
		return model.ErrAlreadyProcessed
	}

	if withdrawal.Amount <= 0 {
		return model.ErrInvalidAmount
	}

	// Guarded transition out of pending. When two admins settle the
	// same request concurrently, exactly one transaction lands.
	settled, err := s.repo.SettleWithdrawal(ctx, id, req.Status, adminID, req.Notes)
	if err != nil {
		logger.Error("출금 정산 반영 실패", err)
		return err
	}
	if !settled {
		return model.ErrAlreadyProcessed
	}

	return nil
}

// -------------------------------------------------------------------
// ADMIN DASHBOARD
// -------------------------------------------------------------------

func (s *referralService) AdminList(ctx context.Context) (*model.AdminList, error) {
	accounts, err := s.repo.ListRewardedAccounts(ctx)
	if err != nil {
		return nil, err
	}

	withdrawals, err := s.repo.ListAllWithdrawals(ctx)
	if err != nil {
		return nil, err
	}

	type withdrawalGroup struct {
		requests   []model.AdminWithdrawalInfo
		hasPending bool
	}
	groups := make(map[string]*withdrawalGroup)
	for _, w := range withdrawals {
		group, ok := groups[w.UserID]
		if !ok {
			group = &withdrawalGroup{}
			groups[w.UserID] = group
		}

		group.requests = append(group.requests, model.AdminWithdrawalInfo{
			ID:            w.ID.String(),
			Amount:        w.Amount,
			Status:        string(w.Status),
			CreatedAt:     w.CreatedAt,
			ProcessedAt:   w.ProcessedAt,
			AccountHolder: w.AccountHolder,
		})
		if w.Status == model.WithdrawalPending {
			group.hasPending = true
		}
	}

	result := &model.AdminList{Referrals: make([]model.AdminReferralItem, 0, len(accounts))}
	for _, account := range accounts {
		item := model.AdminReferralItem{
			UserID:                  account.UserID,
			Code:                    account.Code,
			OwnerName:               account.OwnerName,
			OwnerEmail:              account.OwnerEmail,
			LoginType:               account.LoginType,
			TotalReward:             account.TotalReward,
			UsageCount:              account.UsageCount,
			CreatedAt:               account.CreatedAt,
			LastRewardedAt:          account.LastRewardedAt,
			PendingWithdrawal:       account.PendingWithdrawalAmount,
			WithdrawnAmount:         account.WithdrawnAmount,
			LastWithdrawalRequestAt: account.LastWithdrawalRequestAt,
			HasPendingWithdrawal:    account.PendingWithdrawalAmount > 0,
			WithdrawalRequests:      []model.AdminWithdrawalInfo{},
		}

		if group, ok := groups[account.UserID]; ok {
			item.WithdrawalRequests = group.requests
			item.HasPendingWithdrawal = item.HasPendingWithdrawal || group.hasPending
			if len(group.requests) > 0 {
				latest := group.requests[0]
				item.LatestWithdrawal = &latest
			}
		}

		result.Referrals = append(result.Referrals, item)
		result.TotalReward += account.TotalReward
		result.TotalUsageCount += account.UsageCount
		result.TotalPendingWithdrawals += account.PendingWithdrawalAmount
	}

	return result, nil
}

func toWithdrawalItems(withdrawals []*model.WithdrawalRequest) []model.WithdrawalItem {
	items := make([]model.WithdrawalItem, 0, len(withdrawals))
	for _, w := range withdrawals {
		items = append(items, model.WithdrawalItem{
			ID:            w.ID.String(),
			Amount:        w.Amount,
			AccountNumber: w.AccountNumber,
			AccountHolder: w.AccountHolder,
			Status:        string(w.Status),
			CreatedAt:     w.CreatedAt,
			ProcessedAt:   w.ProcessedAt,
			Notes:         w.Notes,
		})
	}
	return items
}
