package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/discount/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/discount/service"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/middleware"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/response"
)

type DiscountHandler struct {
	service service.ServiceInterface
}

func NewDiscountHandler(service service.ServiceInterface) *DiscountHandler {
	return &DiscountHandler{service: service}
}

// Create - POST /api/discount/create
func (h *DiscountHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	coupon, reused, err := h.service.IssueOrReuse(c.Request.Context(), user)
	if err != nil {
		response.InternalServerError(c, "할인 코드 발급에 실패했습니다.")
		return
	}

	payload := discountPayload(coupon)
	payload["reused"] = reused
	response.OK(c, payload)
}

// Status - GET /api/discount/status
func (h *DiscountHandler) Status(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	coupon, err := h.service.Status(c.Request.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, model.ErrDiscountNotFound) {
			response.OK(c, gin.H{"hasDiscount": false})
			return
		}
		response.InternalServerError(c, "할인 코드 조회에 실패했습니다.")
		return
	}

	payload := discountPayload(coupon)
	payload["hasDiscount"] = true
	response.OK(c, payload)
}

func discountPayload(coupon *model.DiscountCode) gin.H {
	return gin.H{
		"code":            coupon.Code,
		"discountAmount":  coupon.DiscountAmount,
		"originalPrice":   coupon.OriginalPrice,
		"discountedPrice": coupon.DiscountedPrice,
		"isUsed":          coupon.IsUsed,
		"status":          coupon.EffectiveStatus(time.Now()),
		"createdAt":       coupon.CreatedAt,
		"expiresAt":       coupon.ExpiresAt,
	}
}
