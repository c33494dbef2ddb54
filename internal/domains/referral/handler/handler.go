package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/service"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/middleware"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/response"
)

// ReferralHandler - HTTP layer cho referral domain
type ReferralHandler struct {
	service service.ServiceInterface
}

func NewReferralHandler(service service.ServiceInterface) *ReferralHandler {
	return &ReferralHandler{service: service}
}

// GenerateCode - POST /api/referrals/generate
// Idempotent: the second call returns the same code with alreadyExists.
func (h *ReferralHandler) GenerateCode(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	account, alreadyExists, err := h.service.IssueOrGetCode(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, gin.H{
		"referral":      account,
		"alreadyExists": alreadyExists,
	})
}

// ValidateCode - POST /api/referrals/validate
func (h *ReferralHandler) ValidateCode(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	var req model.ValidateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "요청 형식이 올바르지 않습니다.")
		return
	}
	req.NormalizeCode()
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	quote, err := h.service.ValidateReferral(c.Request.Context(), user, &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, gin.H{"discount": quote})
}

// Me - GET /api/referrals/me
func (h *ReferralHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, gin.H{
		"hasCode":                 summary.HasCode,
		"referral":                summary.Referral,
		"totalReward":             summary.TotalReward,
		"usageCount":              summary.UsageCount,
		"pendingWithdrawalAmount": summary.PendingWithdrawal,
		"withdrawnAmount":         summary.WithdrawnAmount,
		"referralUsages":          summary.ReferralUsages,
		"withdrawals":             summary.Withdrawals,
		"hasUsedReferralDiscount": summary.HasUsedReferralDiscount,
	})
}

// CreateWithdrawal - POST /api/referrals/withdrawals
func (h *ReferralHandler) CreateWithdrawal(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	var req model.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "요청 형식이 올바르지 않습니다.")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	withdrawal, err := h.service.RequestWithdrawal(c.Request.Context(), user, &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, gin.H{"withdrawal": withdrawal})
}

// ListWithdrawals - GET /api/referrals/withdrawals
func (h *ReferralHandler) ListWithdrawals(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	withdrawals, err := h.service.ListWithdrawals(c.Request.Context(), user.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, gin.H{"withdrawals": withdrawals})
}

// SettleWithdrawal - PATCH /api/referrals/withdrawals/:id (admin only)
func (h *ReferralHandler) SettleWithdrawal(c *gin.Context) {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	var req model.SettleWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "요청 형식이 올바르지 않습니다.")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SettleWithdrawal(c.Request.Context(), admin.UserID, c.Param("id"), &req); err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, gin.H{"status": string(req.Status)})
}

// AdminList - GET /api/referrals/list (admin only)
func (h *ReferralHandler) AdminList(c *gin.Context) {
	list, err := h.service.AdminList(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, gin.H{
		"referrals":               list.Referrals,
		"totalReward":             list.TotalReward,
		"totalUsageCount":         list.TotalUsageCount,
		"totalPendingWithdrawals": list.TotalPendingWithdrawals,
	})
}

// fail maps domain errors onto the flat response envelope.
func (h *ReferralHandler) fail(c *gin.Context, err error) {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		response.Fail(c, appErr.HTTPStatus, appErr.Message)
		return
	}
	response.Fail(c, http.StatusInternalServerError, "서버 오류가 발생했습니다.")
}
