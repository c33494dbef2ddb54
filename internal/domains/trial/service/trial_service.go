package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/trial/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/trial/repository"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/identity"
	"github.com/dlwnstjrzz/autobomber-website/pkg/logger"
)

type ServiceInterface interface {
	// Issue cấp trial code mới; trả về trial hiện có nếu đã phát hành.
	Issue(ctx context.Context, user *identity.User) (*model.Trial, bool, error)
	Status(ctx context.Context, userID string) (*model.Trial, error)
	GetByCode(ctx context.Context, code string) (*model.Trial, error)
}

type trialService struct {
	repo repository.TrialRepository
}

func NewTrialService(repo repository.TrialRepository) ServiceInterface {
	return &trialService{repo: repo}
}

// Issue returns (trial, alreadyIssued, error). One trial per account,
// ever: an expired trial still blocks re-issuance.
func (s *trialService) Issue(ctx context.Context, user *identity.User) (*model.Trial, bool, error) {
	existing, err := s.repo.GetByUserID(ctx, user.UserID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, model.ErrTrialNotFound) {
		return nil, false, err
	}

	code, err := generateTrialCode()
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	trial := &model.Trial{
		Code:      code,
		UserID:    user.UserID,
		LoginType: user.LoginType,
		Nickname:  user.DisplayName,
		Email:     user.Email,
		Status:    model.StatusActive,
		CreatedAt: now,
		ExpiresAt: now.Add(model.ValidityHours * time.Hour),
	}

	inserted, err := s.repo.CreateIfAbsent(ctx, trial)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		fresh, getErr := s.repo.GetByUserID(ctx, user.UserID)
		if getErr != nil {
			return nil, false, getErr
		}
		return fresh, true, nil
	}

	logger.Info("체험 코드 발급 완료", map[string]interface{}{
		"userId": user.UserID,
	})
	return trial, false, nil
}

func (s *trialService) Status(ctx context.Context, userID string) (*model.Trial, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *trialService) GetByCode(ctx context.Context, code string) (*model.Trial, error) {
	return s.repo.GetByCode(ctx, code)
}

func generateTrialCode() (string, error) {
	buf := make([]byte, model.CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate trial code: %w", err)
	}
	for i, b := range buf {
		buf[i] = model.CodeAlphabet[int(b)%len(model.CodeAlphabet)]
	}
	return string(buf), nil
}
