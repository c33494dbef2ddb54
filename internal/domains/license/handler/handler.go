package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/license/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/license/service"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/middleware"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/response"
)

type LicenseHandler struct {
	service service.ServiceInterface
}

func NewLicenseHandler(service service.ServiceInterface) *LicenseHandler {
	return &LicenseHandler{service: service}
}

// List - GET /api/licenses
func (h *LicenseHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	licenses, err := h.service.ListForUser(c.Request.Context(), user.UserID)
	if err != nil {
		response.InternalServerError(c, "라이선스 조회에 실패했습니다.")
		return
	}

	now := time.Now()
	items := make([]gin.H, 0, len(licenses))
	for _, l := range licenses {
		items = append(items, gin.H{
			"licenseKey": l.Code,
			"orderId":    l.OrderID,
			"plan":       l.Plan,
			"status":     l.Status,
			"createdAt":  l.CreatedAt,
			"expiresAt":  l.ExpiresAt,
			"isExpired":  l.IsExpired(now),
		})
	}

	response.OK(c, gin.H{"licenses": items})
}

// GetByOrder - GET /api/license/:orderId
func (h *LicenseHandler) GetByOrder(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	license, err := h.service.GetForOrder(c.Request.Context(), c.Param("orderId"), user.UserID)
	if err != nil {
		if errors.Is(err, model.ErrLicenseNotFound) {
			response.NotFound(c, model.ErrNotFound.Message)
			return
		}
		response.InternalServerError(c, "라이선스 조회에 실패했습니다.")
		return
	}

	response.OK(c, gin.H{"license": license})
}
