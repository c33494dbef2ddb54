package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/discount/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/identity"
)

type memoryDiscountRepo struct {
	mu     sync.Mutex
	byUser map[string]*model.DiscountCode
}

func newMemoryDiscountRepo() *memoryDiscountRepo {
	return &memoryDiscountRepo{byUser: make(map[string]*model.DiscountCode)}
}

func (r *memoryDiscountRepo) GetByUserID(_ context.Context, userID string) (*model.DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupon, ok := r.byUser[userID]
	if !ok {
		return nil, model.ErrDiscountNotFound
	}
	clone := *coupon
	return &clone, nil
}

func (r *memoryDiscountRepo) Upsert(_ context.Context, coupon *model.DiscountCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *coupon
	r.byUser[coupon.UserID] = &clone
	return nil
}

func (r *memoryDiscountRepo) MarkUsed(_ context.Context, userID, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupon, ok := r.byUser[userID]
	if !ok || coupon.Code != code || coupon.IsUsed {
		return false, nil
	}
	coupon.IsUsed = true
	return true, nil
}

func discountUser(id string) *identity.User {
	return &identity.User{UserID: id, LoginType: identity.LoginTypeKakao, DisplayName: "할인유저"}
}

func TestIssueOrReuse_IssuesNewCoupon(t *testing.T) {
	svc := NewDiscountService(newMemoryDiscountRepo())

	coupon, reused, err := svc.IssueOrReuse(context.Background(), discountUser("kakao_1"))
	require.NoError(t, err)

	assert.False(t, reused)
	assert.True(t, strings.HasPrefix(coupon.Code, model.CodePrefix))
	assert.Len(t, coupon.Code, len(model.CodePrefix)+model.CodeLength)
	assert.Equal(t, int64(model.DiscountAmount), coupon.DiscountAmount)
	assert.Equal(t, int64(model.OriginalPrice-model.DiscountAmount), coupon.DiscountedPrice)
	assert.False(t, coupon.IsUsed)
}

func TestIssueOrReuse_ReusesValidCoupon(t *testing.T) {
	svc := NewDiscountService(newMemoryDiscountRepo())
	user := discountUser("kakao_1")

	first, _, err := svc.IssueOrReuse(context.Background(), user)
	require.NoError(t, err)

	second, reused, err := svc.IssueOrReuse(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, first.Code, second.Code)
}

func TestIssueOrReuse_ReplacesExpiredCoupon(t *testing.T) {
	repo := newMemoryDiscountRepo()
	expired := &model.DiscountCode{
		UserID:    "kakao_1",
		Code:      "DISCOLD999",
		Status:    model.StatusActive,
		CreatedAt: time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	}
	require.NoError(t, repo.Upsert(context.Background(), expired))

	svc := NewDiscountService(repo)
	coupon, reused, err := svc.IssueOrReuse(context.Background(), discountUser("kakao_1"))
	require.NoError(t, err)
	assert.False(t, reused)
	assert.NotEqual(t, "DISCOLD999", coupon.Code)
	assert.True(t, coupon.ExpiresAt.After(time.Now()))
}

func TestIssueOrReuse_ReplacesUsedCoupon(t *testing.T) {
	repo := newMemoryDiscountRepo()
	svc := NewDiscountService(repo)
	user := discountUser("kakao_1")

	first, _, err := svc.IssueOrReuse(context.Background(), user)
	require.NoError(t, err)
	require.NoError(t, svc.MarkUsed(context.Background(), user.UserID, first.Code))

	second, reused, err := svc.IssueOrReuse(context.Background(), user)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.NotEqual(t, first.Code, second.Code)
}

func TestMarkUsed(t *testing.T) {
	repo := newMemoryDiscountRepo()
	svc := NewDiscountService(repo)
	user := discountUser("kakao_1")

	coupon, _, err := svc.IssueOrReuse(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, svc.MarkUsed(context.Background(), user.UserID, coupon.Code))

	// Second burn and wrong code are both rejected.
	assert.ErrorIs(t, svc.MarkUsed(context.Background(), user.UserID, coupon.Code), model.ErrDiscountNotFound)
	assert.ErrorIs(t, svc.MarkUsed(context.Background(), user.UserID, "DISCWRONG1"), model.ErrDiscountNotFound)

	stored, err := svc.Status(context.Background(), user.UserID)
	require.NoError(t, err)
	assert.True(t, stored.IsUsed)
}

func TestStatus_NotFound(t *testing.T) {
	svc := NewDiscountService(newMemoryDiscountRepo())

	_, err := svc.Status(context.Background(), "kakao_none")
	assert.ErrorIs(t, err, model.ErrDiscountNotFound)
}
