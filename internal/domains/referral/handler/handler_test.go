package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/identity"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/middleware"
)

// stubService trả về canned responses cho handler tests.
type stubService struct {
	account       *model.ReferralAccount
	alreadyExists bool
	quote         *model.DiscountQuote
	summary       *model.Summary
	withdrawal    *model.WithdrawalRequest
	withdrawals   []model.WithdrawalItem
	adminList     *model.AdminList
	err           error
}

func (s *stubService) IssueOrGetCode(context.Context, *identity.User) (*model.ReferralAccount, bool, error) {
	return s.account, s.alreadyExists, s.err
}

func (s *stubService) ValidateReferral(context.Context, *identity.User, *model.ValidateReferralRequest) (*model.DiscountQuote, error) {
	return s.quote, s.err
}

func (s *stubService) CreditIfQualifying(context.Context, model.CreditInput) error {
	return s.err
}

func (s *stubService) Summary(context.Context, *identity.User) (*model.Summary, error) {
	return s.summary, s.err
}

func (s *stubService) RequestWithdrawal(context.Context, *identity.User, *model.CreateWithdrawalRequest) (*model.WithdrawalRequest, error) {
	return s.withdrawal, s.err
}

func (s *stubService) ListWithdrawals(context.Context, string) ([]model.WithdrawalItem, error) {
	return s.withdrawals, s.err
}

func (s *stubService) SettleWithdrawal(context.Context, string, string, *model.SettleWithdrawalRequest) error {
	return s.err
}

func (s *stubService) AdminList(context.Context) (*model.AdminList, error) {
	return s.adminList, s.err
}

// stubResolver resolves every request to a fixed user (or none).
type stubResolver struct {
	user *identity.User
}

func (r *stubResolver) Resolve(*gin.Context) *identity.User {
	return r.user
}

func newTestRouter(svc *stubService, user *identity.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewReferralHandler(svc)

	router := gin.New()
	group := router.Group("/api/referrals")
	group.Use(middleware.RequireUser(&stubResolver{user: user}))
	{
		group.POST("/generate", h.GenerateCode)
		group.POST("/validate", h.ValidateCode)
		group.GET("/me", h.Me)
		group.POST("/withdrawals", h.CreateWithdrawal)
		group.GET("/withdrawals", h.ListWithdrawals)
		group.GET("/list", h.AdminList)
		group.PATCH("/withdrawals/:id", h.SettleWithdrawal)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	return rec, parsed
}

func TestGenerateCode_Success(t *testing.T) {
	svc := &stubService{
		account:       &model.ReferralAccount{UserID: "kakao_1", Code: "ABCD2345", TotalReward: 22705},
		alreadyExists: false,
	}
	router := newTestRouter(svc, &identity.User{UserID: "kakao_1"})

	rec, body := doJSON(t, router, http.MethodPost, "/api/referrals/generate", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["alreadyExists"])

	// The full account document goes out under "referral".
	referral, ok := body["referral"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ABCD2345", referral["code"])
	assert.Equal(t, "kakao_1", referral["userId"])
	assert.Equal(t, float64(22705), referral["totalReward"])
}

func TestGenerateCode_RequiresLogin(t *testing.T) {
	router := newTestRouter(&stubService{}, nil)

	rec, body := doJSON(t, router, http.MethodPost, "/api/referrals/generate", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "로그인이 필요합니다.", body["error"])
}

func TestValidateCode_NotFound(t *testing.T) {
	svc := &stubService{err: model.ErrReferralNotFound}
	router := newTestRouter(svc, &identity.User{UserID: "kakao_1"})

	rec, body := doJSON(t, router, http.MethodPost, "/api/referrals/validate",
		gin.H{"code": "NOPE9999"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "존재하지 않는 추천인 코드입니다.", body["error"])
}

func TestValidateCode_MissingCode(t *testing.T) {
	router := newTestRouter(&stubService{}, &identity.User{UserID: "kakao_1"})

	rec, body := doJSON(t, router, http.MethodPost, "/api/referrals/validate", gin.H{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestValidateCode_ReturnsQuote(t *testing.T) {
	svc := &stubService{quote: &model.DiscountQuote{
		ReferralCode:    "ABCD2345",
		OriginalPrice:   239000,
		DiscountedPrice: 227050,
		DiscountAmount:  11950,
		DiscountRate:    0.05,
	}}
	router := newTestRouter(svc, &identity.User{UserID: "kakao_1"})

	rec, body := doJSON(t, router, http.MethodPost, "/api/referrals/validate",
		gin.H{"code": "ABCD2345"})

	assert.Equal(t, http.StatusOK, rec.Code)
	discount, ok := body["discount"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(227050), discount["discountedPrice"])
	assert.Equal(t, float64(11950), discount["discountAmount"])
}

func TestCreateWithdrawal_ValidationError(t *testing.T) {
	router := newTestRouter(&stubService{}, &identity.User{UserID: "kakao_1"})

	rec, body := doJSON(t, router, http.MethodPost, "/api/referrals/withdrawals",
		gin.H{"amount": 0, "accountNumber": "110-1234-5678", "accountHolder": "김철수"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestCreateWithdrawal_InsufficientBalance(t *testing.T) {
	svc := &stubService{err: model.NewInsufficientBalanceError(12345)}
	router := newTestRouter(svc, &identity.User{UserID: "kakao_1"})

	rec, body := doJSON(t, router, http.MethodPost, "/api/referrals/withdrawals",
		gin.H{"amount": 99999, "accountNumber": "110-1234-5678", "accountHolder": "김철수"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "출금 가능 금액은 ₩12,345 입니다.", body["error"])
}

func TestSettleWithdrawal_Conflict(t *testing.T) {
	svc := &stubService{err: model.ErrAlreadyProcessed}
	router := newTestRouter(svc, &identity.User{UserID: "kakao_admin", Email: "admin@example.com"})

	rec, body := doJSON(t, router, http.MethodPatch, "/api/referrals/withdrawals/some-id",
		gin.H{"status": "completed"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "이미 처리된 출금 신청입니다.", body["error"])
}

func TestSettleWithdrawal_InvalidDecision(t *testing.T) {
	router := newTestRouter(&stubService{}, &identity.User{UserID: "kakao_admin"})

	rec, _ := doJSON(t, router, http.MethodPatch, "/api/referrals/withdrawals/some-id",
		gin.H{"status": "maybe"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe_Envelope(t *testing.T) {
	svc := &stubService{summary: &model.Summary{
		HasCode:        true,
		Referral:       &model.ReferralAccount{UserID: "kakao_1", Code: "ABCD2345", TotalReward: 22705},
		TotalReward:    22705,
		UsageCount:     1,
		ReferralUsages: []model.UsageItem{{OrderID: "order_1", Amount: 227050, RewardAmount: 22705}},
		Withdrawals:    []model.WithdrawalItem{},
	}}
	router := newTestRouter(svc, &identity.User{UserID: "kakao_1"})

	rec, body := doJSON(t, router, http.MethodGet, "/api/referrals/me", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["hasCode"])
	assert.Equal(t, float64(22705), body["totalReward"])
}

func TestInternalErrorEnvelope(t *testing.T) {
	svc := &stubService{err: context.DeadlineExceeded}
	router := newTestRouter(svc, &identity.User{UserID: "kakao_1"})

	rec, body := doJSON(t, router, http.MethodGet, "/api/referrals/me", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "서버 오류가 발생했습니다.", body["error"])
}
