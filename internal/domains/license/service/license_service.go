package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/license/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/license/repository"
	"github.com/dlwnstjrzz/autobomber-website/pkg/logger"
)

// Key alphabet excludes 0/O and 1/I so keys survive being read aloud
// or retyped from a screenshot.
const (
	keyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	keyLength   = 12
)

// EnsureInput carries what a confirmed payment knows about the buyer.
type EnsureInput struct {
	OrderID    string
	UserID     string
	LoginType  string
	Plan       string
	Amount     int64
	PaymentKey string
	BuyerName  string
	BuyerEmail string
}

type ServiceInterface interface {
	EnsureLicense(ctx context.Context, input EnsureInput) (*model.License, error)
	ListForUser(ctx context.Context, userID string) ([]*model.License, error)
	GetForOrder(ctx context.Context, orderID, userID string) (*model.License, error)
	GetByCode(ctx context.Context, code string) (*model.License, error)
}

type licenseService struct {
	repo repository.LicenseRepository
}

func NewLicenseService(repo repository.LicenseRepository) ServiceInterface {
	return &licenseService{repo: repo}
}

// EnsureLicense cấp license cho một đơn hàng đã thanh toán. Calling it
// again with the same (orderID, userID) returns the existing key; the
// UNIQUE constraint backs this up when two confirmations race.
func (s *licenseService) EnsureLicense(ctx context.Context, input EnsureInput) (*model.License, error) {
	if input.OrderID == "" || input.UserID == "" {
		return nil, fmt.Errorf("license requires orderId and userId")
	}

	existing, err := s.repo.GetByOrderAndUser(ctx, input.OrderID, input.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrLicenseNotFound) {
		return nil, err
	}

	code, err := generateKey(keyLength)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	license := &model.License{
		Code:       code,
		OrderID:    input.OrderID,
		UserID:     input.UserID,
		LoginType:  input.LoginType,
		Plan:       input.Plan,
		Amount:     input.Amount,
		Status:     model.StatusActive,
		PaymentKey: input.PaymentKey,
		BuyerName:  input.BuyerName,
		BuyerEmail: input.BuyerEmail,
		CreatedAt:  now,
		ExpiresAt:  now.AddDate(0, 0, model.ValidityDays),
	}

	if err := s.repo.Create(ctx, license); err != nil {
		if fresh, getErr := s.repo.GetByOrderAndUser(ctx, input.OrderID, input.UserID); getErr == nil {
			return fresh, nil
		}
		return nil, err
	}

	logger.Info("라이선스 발급 완료", map[string]interface{}{
		"orderId": input.OrderID,
		"userId":  input.UserID,
	})
	return license, nil
}

func (s *licenseService) ListForUser(ctx context.Context, userID string) ([]*model.License, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *licenseService) GetForOrder(ctx context.Context, orderID, userID string) (*model.License, error) {
	return s.repo.GetByOrderAndUser(ctx, orderID, userID)
}

func (s *licenseService) GetByCode(ctx context.Context, code string) (*model.License, error) {
	return s.repo.GetByCode(ctx, code)
}

func generateKey(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate license key: %w", err)
	}
	for i, b := range buf {
		buf[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}
	return string(buf), nil
}
