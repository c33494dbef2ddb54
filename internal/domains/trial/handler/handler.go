package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/trial/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/trial/service"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/middleware"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/response"
)

type TrialHandler struct {
	service service.ServiceInterface
}

func NewTrialHandler(service service.ServiceInterface) *TrialHandler {
	return &TrialHandler{service: service}
}

// Create - POST /api/trial/create
func (h *TrialHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	trial, alreadyIssued, err := h.service.Issue(c.Request.Context(), user)
	if err != nil {
		response.InternalServerError(c, "체험 코드 발급에 실패했습니다.")
		return
	}

	response.OK(c, gin.H{
		"trial":         trialPayload(trial),
		"alreadyIssued": alreadyIssued,
	})
}

// Status - GET /api/trial/status
func (h *TrialHandler) Status(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	trial, err := h.service.Status(c.Request.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, model.ErrTrialNotFound) {
			response.OK(c, gin.H{"hasTrial": false})
			return
		}
		response.InternalServerError(c, "체험 상태 조회에 실패했습니다.")
		return
	}

	payload := trialPayload(trial)
	payload["hasTrial"] = true
	response.OK(c, payload)
}

// GetByCode - GET /api/trial/:code
func (h *TrialHandler) GetByCode(c *gin.Context) {
	trial, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, model.ErrTrialNotFound) {
			response.NotFound(c, "체험 코드를 찾을 수 없습니다.")
			return
		}
		response.InternalServerError(c, "체험 코드 조회에 실패했습니다.")
		return
	}

	response.OK(c, gin.H{"trial": trialPayload(trial)})
}

func trialPayload(trial *model.Trial) gin.H {
	now := time.Now()
	return gin.H{
		"trialCode":        trial.Code,
		"status":           trial.EffectiveStatus(now),
		"createdAt":        trial.CreatedAt,
		"expiresAt":        trial.ExpiresAt,
		"remainingSeconds": trial.RemainingSeconds(now),
	}
}
