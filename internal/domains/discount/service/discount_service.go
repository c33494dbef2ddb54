package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/discount/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/discount/repository"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/identity"
)

type ServiceInterface interface {
	// IssueOrReuse trả về coupon còn hạn nếu có, ngược lại phát hành mới.
	IssueOrReuse(ctx context.Context, user *identity.User) (*model.DiscountCode, bool, error)
	Status(ctx context.Context, userID string) (*model.DiscountCode, error)
	MarkUsed(ctx context.Context, userID, code string) error
}

type discountService struct {
	repo repository.DiscountRepository
}

func NewDiscountService(repo repository.DiscountRepository) ServiceInterface {
	return &discountService{repo: repo}
}

func (s *discountService) IssueOrReuse(ctx context.Context, user *identity.User) (*model.DiscountCode, bool, error) {
	now := time.Now()

	existing, err := s.repo.GetByUserID(ctx, user.UserID)
	if err == nil && !existing.IsUsed && !existing.IsExpired(now) {
		return existing, true, nil
	}
	if err != nil && !errors.Is(err, model.ErrDiscountNotFound) {
		return nil, false, err
	}

	code, err := generateDiscountCode()
	if err != nil {
		return nil, false, err
	}

	coupon := &model.DiscountCode{
		UserID:          user.UserID,
		Code:            code,
		LoginType:       user.LoginType,
		Nickname:        user.DisplayName,
		DiscountAmount:  model.DiscountAmount,
		OriginalPrice:   model.OriginalPrice,
		DiscountedPrice: model.OriginalPrice - model.DiscountAmount,
		IsUsed:          false,
		Status:          model.StatusActive,
		CreatedAt:       now,
		ExpiresAt:       now.Add(model.ValidityHours * time.Hour),
	}

	if err := s.repo.Upsert(ctx, coupon); err != nil {
		return nil, false, err
	}
	return coupon, false, nil
}

func (s *discountService) Status(ctx context.Context, userID string) (*model.DiscountCode, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *discountService) MarkUsed(ctx context.Context, userID, code string) error {
	marked, err := s.repo.MarkUsed(ctx, userID, code)
	if err != nil {
		return err
	}
	if !marked {
		return model.ErrDiscountNotFound
	}
	return nil
}

func generateDiscountCode() (string, error) {
	buf := make([]byte, model.CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate discount code: %w", err)
	}
	for i, b := range buf {
		buf[i] = model.CodeAlphabet[int(b)%len(model.CodeAlphabet)]
	}
	return model.CodePrefix + string(buf), nil
}
