package service

import (
	"context"

	licenseservice "github.com/dlwnstjrzz/autobomber-website/internal/domains/license/service"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/payment/model"
	referralmodel "github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/model"
	referralservice "github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/service"
)

// licenseConsumer mints the license key for the paid order.
type licenseConsumer struct {
	licenses licenseservice.ServiceInterface
}

func NewLicenseConsumer(licenses licenseservice.ServiceInterface) model.Consumer {
	return &licenseConsumer{licenses: licenses}
}

func (c *licenseConsumer) Name() string { return "license" }

func (c *licenseConsumer) HandlePaymentConfirmed(ctx context.Context, event model.PaymentConfirmed) error {
	_, err := c.licenses.EnsureLicense(ctx, licenseservice.EnsureInput{
		OrderID:    event.OrderID,
		UserID:     event.UserID,
		LoginType:  event.LoginType,
		Plan:       event.Plan,
		Amount:     event.Amount,
		PaymentKey: event.PaymentKey,
		BuyerName:  event.BuyerName,
		BuyerEmail: event.BuyerEmail,
	})
	return err
}

// referralConsumer credits the referrer when the order redeemed a
// code. The crediting path re-checks eligibility itself; this adapter
// only maps the event.
type referralConsumer struct {
	referrals referralservice.ServiceInterface
}

func NewReferralConsumer(referrals referralservice.ServiceInterface) model.Consumer {
	return &referralConsumer{referrals: referrals}
}

func (c *referralConsumer) Name() string { return "referral" }

func (c *referralConsumer) HandlePaymentConfirmed(ctx context.Context, event model.PaymentConfirmed) error {
	return c.referrals.CreditIfQualifying(ctx, referralmodel.CreditInput{
		OrderID:            event.OrderID,
		PurchaserUserID:    event.UserID,
		PurchaserLoginType: event.LoginType,
		Amount:             event.Amount,
		Plan:               event.Plan,
		ReferralCode:       event.ReferralCode,
	})
}
