package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	licensemodel "github.com/dlwnstjrzz/autobomber-website/internal/domains/license/model"
	licenserepo "github.com/dlwnstjrzz/autobomber-website/internal/domains/license/repository"
	trialmodel "github.com/dlwnstjrzz/autobomber-website/internal/domains/trial/model"
	trialrepo "github.com/dlwnstjrzz/autobomber-website/internal/domains/trial/repository"
	"github.com/dlwnstjrzz/autobomber-website/pkg/logger"
)

// cacheTTL is short on purpose: an activation answer must not outlive
// the moment a trial expires by much.
const cacheTTL = 5 * time.Minute

const (
	TypeLicense = "license"
	TypeTrial   = "trial"
)

// Result is what the desktop client receives when it activates with a
// key. Both license keys and trial codes resolve through this one
// lookup.
type Result struct {
	Valid     bool       `json:"valid"`
	Type      string     `json:"type,omitempty"`
	Plan      string     `json:"plan,omitempty"`
	UserID    string     `json:"userId,omitempty"`
	Status    string     `json:"status,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type ServiceInterface interface {
	Activate(ctx context.Context, code string) (*Result, error)
}

// ResultCache is the slice of the cache layer activation needs.
// *cache.RedisClient satisfies it; nil disables caching.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type activationService struct {
	licenses licenserepo.LicenseRepository
	trials   trialrepo.TrialRepository
	cache    ResultCache
}

func NewActivationService(licenses licenserepo.LicenseRepository, trials trialrepo.TrialRepository, redis ResultCache) ServiceInterface {
	return &activationService{licenses: licenses, trials: trials, cache: redis}
}

// Activate resolves a key against licenses first, then trials. The
// result is cached; cache failures degrade to a straight DB lookup.
func (s *activationService) Activate(ctx context.Context, code string) (*Result, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return &Result{Valid: false}, nil
	}

	cacheKey := "activation:" + code
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	result, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, cacheKey, result)
	return result, nil
}

func (s *activationService) lookup(ctx context.Context, code string) (*Result, error) {
	now := time.Now()

	license, err := s.licenses.GetByCode(ctx, code)
	if err == nil {
		expiresAt := license.ExpiresAt
		return &Result{
			Valid:     !license.IsExpired(now),
			Type:      TypeLicense,
			Plan:      license.Plan,
			UserID:    license.UserID,
			Status:    license.Status,
			ExpiresAt: &expiresAt,
		}, nil
	}
	if !errors.Is(err, licensemodel.ErrLicenseNotFound) {
		return nil, err
	}

	trial, err := s.trials.GetByCode(ctx, code)
	if err == nil {
		expiresAt := trial.ExpiresAt
		return &Result{
			Valid:     trial.EffectiveStatus(now) == trialmodel.StatusActive,
			Type:      TypeTrial,
			Plan:      "trial",
			UserID:    trial.UserID,
			Status:    trial.EffectiveStatus(now),
			ExpiresAt: &expiresAt,
		}, nil
	}
	if !errors.Is(err, trialmodel.ErrTrialNotFound) {
		return nil, err
	}

	return &Result{Valid: false}, nil
}

func (s *activationService) fromCache(ctx context.Context, key string) *Result {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return nil
	}

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}
	return &result
}

func (s *activationService) toCache(ctx context.Context, key string, result *Result) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), cacheTTL); err != nil {
		logger.Debug("activation cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
