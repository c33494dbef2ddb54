package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/activation/service"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/response"
)

type ActivationHandler struct {
	service service.ServiceInterface
}

func NewActivationHandler(service service.ServiceInterface) *ActivationHandler {
	return &ActivationHandler{service: service}
}

// Activate - GET /api/activation/:code
// Unauthenticated: the desktop client calls this with only a key.
func (h *ActivationHandler) Activate(c *gin.Context) {
	result, err := h.service.Activate(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.InternalServerError(c, "활성화 확인에 실패했습니다.")
		return
	}

	if !result.Valid && result.Type == "" {
		response.NotFound(c, "유효하지 않은 코드입니다.")
		return
	}

	response.OK(c, gin.H{"activation": result})
}
