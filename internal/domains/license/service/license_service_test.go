package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/license/model"
)

type memoryLicenseRepo struct {
	mu       sync.Mutex
	licenses []*model.License
}

func (r *memoryLicenseRepo) GetByOrderAndUser(_ context.Context, orderID, userID string) (*model.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.licenses {
		if l.OrderID == orderID && l.UserID == userID {
			clone := *l
			return &clone, nil
		}
	}
	return nil, model.ErrLicenseNotFound
}

func (r *memoryLicenseRepo) GetByCode(_ context.Context, code string) (*model.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.licenses {
		if l.Code == code {
			clone := *l
			return &clone, nil
		}
	}
	return nil, model.ErrLicenseNotFound
}

func (r *memoryLicenseRepo) ListByUser(_ context.Context, userID string) ([]*model.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.License
	for _, l := range r.licenses {
		if l.UserID == userID {
			clone := *l
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memoryLicenseRepo) Create(_ context.Context, license *model.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.licenses {
		if l.OrderID == license.OrderID && l.UserID == license.UserID {
			return fmt.Errorf("duplicate key value violates unique constraint")
		}
	}
	clone := *license
	r.licenses = append(r.licenses, &clone)
	return nil
}

func ensureInput(orderID, userID string) EnsureInput {
	return EnsureInput{
		OrderID:    orderID,
		UserID:     userID,
		LoginType:  "kakao",
		Plan:       "yearly",
		Amount:     227050,
		PaymentKey: "payment_key_1",
		BuyerName:  "김철수",
		BuyerEmail: "buyer@example.com",
	}
}

func TestEnsureLicense_Creates(t *testing.T) {
	svc := NewLicenseService(&memoryLicenseRepo{})

	license, err := svc.EnsureLicense(context.Background(), ensureInput("order_1", "kakao_1"))
	require.NoError(t, err)

	assert.Len(t, license.Code, keyLength)
	for _, ch := range license.Code {
		assert.Contains(t, keyAlphabet, string(ch))
	}
	assert.Equal(t, model.StatusActive, license.Status)
	assert.WithinDuration(t, license.CreatedAt.AddDate(0, 0, model.ValidityDays), license.ExpiresAt, time.Second)
}

func TestEnsureLicense_IdempotentPerOrderAndUser(t *testing.T) {
	svc := NewLicenseService(&memoryLicenseRepo{})

	first, err := svc.EnsureLicense(context.Background(), ensureInput("order_1", "kakao_1"))
	require.NoError(t, err)

	second, err := svc.EnsureLicense(context.Background(), ensureInput("order_1", "kakao_1"))
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)

	other, err := svc.EnsureLicense(context.Background(), ensureInput("order_2", "kakao_1"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Code, other.Code)
}

func TestEnsureLicense_RequiresOrderAndUser(t *testing.T) {
	svc := NewLicenseService(&memoryLicenseRepo{})

	_, err := svc.EnsureLicense(context.Background(), EnsureInput{OrderID: "order_1"})
	assert.Error(t, err)

	_, err = svc.EnsureLicense(context.Background(), EnsureInput{UserID: "kakao_1"})
	assert.Error(t, err)
}

func TestEnsureLicense_RecoversFromInsertRace(t *testing.T) {
	// Simulate the loser of a race: the row appears between the lookup
	// and the insert, so Create fails on the unique constraint.
	winner := &model.License{Code: "WINNERKEY234", OrderID: "order_1", UserID: "kakao_1"}
	repo := &raceOnCreateRepo{memoryLicenseRepo: &memoryLicenseRepo{}, winner: winner}

	license, err := NewLicenseService(repo).EnsureLicense(context.Background(), ensureInput("order_1", "kakao_1"))
	require.NoError(t, err)
	assert.Equal(t, "WINNERKEY234", license.Code)
}

type raceOnCreateRepo struct {
	*memoryLicenseRepo
	winner *model.License
	once   sync.Once
}

func (r *raceOnCreateRepo) Create(ctx context.Context, license *model.License) error {
	r.once.Do(func() {
		_ = r.memoryLicenseRepo.Create(ctx, r.winner)
	})
	return r.memoryLicenseRepo.Create(ctx, license)
}

func TestListForUser(t *testing.T) {
	svc := NewLicenseService(&memoryLicenseRepo{})

	_, err := svc.EnsureLicense(context.Background(), ensureInput("order_1", "kakao_1"))
	require.NoError(t, err)
	_, err = svc.EnsureLicense(context.Background(), ensureInput("order_2", "kakao_1"))
	require.NoError(t, err)
	_, err = svc.EnsureLicense(context.Background(), ensureInput("order_3", "google_2"))
	require.NoError(t, err)

	licenses, err := svc.ListForUser(context.Background(), "kakao_1")
	require.NoError(t, err)
	assert.Len(t, licenses, 2)
}

func TestGetForOrder_NotFound(t *testing.T) {
	svc := NewLicenseService(&memoryLicenseRepo{})

	_, err := svc.GetForOrder(context.Background(), "order_missing", "kakao_1")
	assert.ErrorIs(t, err, model.ErrLicenseNotFound)
}

func TestLicenseIsExpired(t *testing.T) {
	fresh := &model.License{ExpiresAt: time.Now().Add(time.Hour)}
	stale := &model.License{ExpiresAt: time.Now().Add(-time.Hour)}

	assert.False(t, fresh.IsExpired(time.Now()))
	assert.True(t, stale.IsExpired(time.Now()))
}
