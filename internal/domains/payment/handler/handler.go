package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/payment/model"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/payment/service"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/middleware"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/response"
	"github.com/dlwnstjrzz/autobomber-website/pkg/logger"
)

type PaymentHandler struct {
	service service.ServiceInterface
	siteURL string
}

func NewPaymentHandler(service service.ServiceInterface, siteURL string) *PaymentHandler {
	return &PaymentHandler{service: service, siteURL: siteURL}
}

// Prepare - POST /api/payment/prepare
func (h *PaymentHandler) Prepare(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "로그인이 필요합니다.")
		return
	}

	var req model.PrepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "요청 형식이 올바르지 않습니다.")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	order, err := h.service.Prepare(c.Request.Context(), user, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.OK(c, gin.H{
		"orderId": order.OrderID,
		"amount":  order.Amount,
		"plan":    order.Plan,
	})
}

// Success - GET /api/payments/success
// Toss redirects the buyer here after widget approval. The handler
// confirms server-side, then bounces the browser to the result page.
func (h *PaymentHandler) Success(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.redirectFail(c, "로그인이 필요합니다.")
		return
	}

	paymentKey := c.Query("paymentKey")
	orderID := c.Query("orderId")
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil {
		h.redirectFail(c, "결제 정보가 올바르지 않습니다.")
		return
	}

	if _, err := h.service.ConfirmSuccess(c.Request.Context(), user, paymentKey, orderID, amount); err != nil {
		logger.Warn("결제 승인 실패", map[string]interface{}{
			"orderId": orderID,
			"error":   err.Error(),
		})
		h.redirectFail(c, err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, h.siteURL+"/purchase/success?orderId="+url.QueryEscape(orderID))
}

// Fail - GET /api/payments/fail
// Toss sends the buyer here when the widget itself fails or the user
// cancels. Nothing to roll back; just surface the message.
func (h *PaymentHandler) Fail(c *gin.Context) {
	code := c.Query("code")
	message := c.Query("message")
	if message == "" {
		message = "결제가 취소되었습니다."
	}

	logger.Info("결제 실패 콜백", map[string]interface{}{
		"code":    code,
		"message": message,
	})
	h.redirectFail(c, message)
}

func (h *PaymentHandler) redirectFail(c *gin.Context, message string) {
	c.Redirect(http.StatusSeeOther, h.siteURL+"/purchase/fail?message="+url.QueryEscape(message))
}
