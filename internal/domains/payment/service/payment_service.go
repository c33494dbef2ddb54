package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	discountservice "github.com/dlwnstjrzz/autobomber-website/internal/domains/discount/service"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/payment/gateway"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/payment/model"
	referralmodel "github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/model"
	referralservice "github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/service"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/identity"
	"github.com/dlwnstjrzz/autobomber-website/pkg/logger"
)

// preparedOrderTTL bounds how long a staged checkout stays claimable.
const preparedOrderTTL = 30 * time.Minute

// Gateway is the slice of the payment provider the service needs.
type Gateway interface {
	Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*gateway.ConfirmResult, error)
}

// OrderStore holds staged orders between prepare and the success
// callback. *cache.RedisClient satisfies it; a nil store means the
// callback trusts the gateway-verified parameters.
type OrderStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type ServiceInterface interface {
	Prepare(ctx context.Context, user *identity.User, req *model.PrepareRequest) (*model.PreparedOrder, error)
	ConfirmSuccess(ctx context.Context, user *identity.User, paymentKey, orderID string, amount int64) (*gateway.ConfirmResult, error)
}

type paymentService struct {
	gateway   Gateway
	referrals referralservice.ServiceInterface
	discounts discountservice.ServiceInterface
	cache     OrderStore
	consumers []model.Consumer
}

func NewPaymentService(gw Gateway, referrals referralservice.ServiceInterface, discounts discountservice.ServiceInterface, redis OrderStore, consumers ...model.Consumer) ServiceInterface {
	return &paymentService{
		gateway:   gw,
		referrals: referrals,
		discounts: discounts,
		cache:     redis,
		consumers: consumers,
	}
}

// Prepare quotes the final amount và stages the order server-side so
// the success callback can verify what the buyer actually paid.
func (s *paymentService) Prepare(ctx context.Context, user *identity.User, req *model.PrepareRequest) (*model.PreparedOrder, error) {
	amount := referralmodel.DefaultBasePrice
	referralCode := ""
	discountCode := ""

	switch {
	case req.ReferralCode != "":
		quote, err := s.referrals.ValidateReferral(ctx, user, &referralmodel.ValidateReferralRequest{
			Code: req.ReferralCode,
			Plan: req.Plan,
		})
		if err != nil {
			return nil, err
		}
		amount = quote.DiscountedPrice
		referralCode = quote.ReferralCode

	case req.DiscountCode != "":
		coupon, err := s.discounts.Status(ctx, user.UserID)
		if err != nil || coupon.Code != req.DiscountCode || coupon.IsUsed || coupon.IsExpired(time.Now()) {
			return nil, fmt.Errorf("유효하지 않은 할인 코드입니다.")
		}
		amount = coupon.DiscountedPrice
		discountCode = coupon.Code
	}

	order := &model.PreparedOrder{
		OrderID:      "order_" + uuid.NewString(),
		UserID:       user.UserID,
		LoginType:    user.LoginType,
		Plan:         req.Plan,
		Amount:       amount,
		ReferralCode: referralCode,
		DiscountCode: discountCode,
		CreatedAt:    time.Now(),
	}

	if err := s.stageOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmSuccess verifies the staged amount, confirms with the
// gateway, then fans the confirmed event out to the consumers. From
// the buyer's point of view the payment is done once the gateway says
// so; consumer failures are logged and swallowed.
func (s *paymentService) ConfirmSuccess(ctx context.Context, user *identity.User, paymentKey, orderID string, amount int64) (*gateway.ConfirmResult, error) {
	if paymentKey == "" || orderID == "" || amount <= 0 {
		return nil, fmt.Errorf("결제 정보가 올바르지 않습니다.")
	}

	prepared := s.loadOrder(ctx, orderID)
	if prepared != nil && prepared.Amount != amount {
		logger.Warn("결제 금액 불일치", map[string]interface{}{
			"orderId":  orderID,
			"expected": prepared.Amount,
			"actual":   amount,
		})
		return nil, fmt.Errorf("결제 금액이 일치하지 않습니다.")
	}

	result, err := s.gateway.Confirm(ctx, paymentKey, orderID, amount)
	if err != nil {
		return nil, err
	}

	event := model.PaymentConfirmed{
		OrderID:    orderID,
		PaymentKey: paymentKey,
		UserID:     user.UserID,
		LoginType:  user.LoginType,
		BuyerName:  user.DisplayName,
		BuyerEmail: user.Email,
		Plan:       referralmodel.PlanYearly,
		Amount:     amount,
	}
	if prepared != nil {
		event.Plan = prepared.Plan
		event.ReferralCode = prepared.ReferralCode
	}

	s.dispatch(ctx, event)

	if prepared != nil && prepared.DiscountCode != "" {
		if err := s.discounts.MarkUsed(ctx, user.UserID, prepared.DiscountCode); err != nil {
			logger.Warn("할인 코드 사용 처리 실패", map[string]interface{}{
				"orderId": orderID,
				"code":    prepared.DiscountCode,
			})
		}
	}

	s.dropOrder(ctx, orderID)
	return result, nil
}

func (s *paymentService) dispatch(ctx context.Context, event model.PaymentConfirmed) {
	for _, consumer := range s.consumers {
		if err := consumer.HandlePaymentConfirmed(ctx, event); err != nil {
			logger.Warn("결제 후속 처리 실패", map[string]interface{}{
				"consumer": consumer.Name(),
				"orderId":  event.OrderID,
				"error":    err.Error(),
			})
		}
	}
}

// ----- staged order persistence -----

func orderKey(orderID string) string {
	return "payment:order:" + orderID
}

func (s *paymentService) stageOrder(ctx context.Context, order *model.PreparedOrder) error {
	if s.cache == nil {
		return nil
	}

	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode prepared order: %w", err)
	}
	return s.cache.Set(ctx, orderKey(order.OrderID), string(raw), preparedOrderTTL)
}

// loadOrder is best-effort: a missing or unreadable staged order
// degrades to trusting the gateway-verified callback parameters.
func (s *paymentService) loadOrder(ctx context.Context, orderID string) *model.PreparedOrder {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, orderKey(orderID))
	if err != nil || raw == "" {
		if err != nil {
			logger.Warn("주문 정보 조회 실패", map[string]interface{}{
				"orderId": orderID,
				"error":   err.Error(),
			})
		}
		return nil
	}

	var order model.PreparedOrder
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil
	}
	return &order
}

func (s *paymentService) dropOrder(ctx context.Context, orderID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, orderKey(orderID)); err != nil {
		logger.Debug("prepared order cleanup failed", map[string]interface{}{
			"orderId": orderID,
		})
	}
}
