package service

import (
	"github.com/shopspring/decimal"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/model"
)

// RewardCalculator xử lý toàn bộ số học tiền tệ của referral program.
// All results are floored to whole KRW.
type RewardCalculator struct {
	discountRate decimal.Decimal
	rewardRate   decimal.Decimal
}

func NewRewardCalculator() *RewardCalculator {
	return &RewardCalculator{
		discountRate: decimal.NewFromFloat(model.DiscountRate),
		rewardRate:   decimal.NewFromFloat(model.RewardRate),
	}
}

// Quote computes the purchaser-side discount for a base price.
//
// discountedPrice = floor(basePrice * (1 - 0.05))
// discountAmount  = basePrice - discountedPrice
func (c *RewardCalculator) Quote(basePrice int64) (discountedPrice, discountAmount int64) {
	base := decimal.NewFromInt(basePrice)
	discounted := base.Mul(decimal.NewFromInt(1).Sub(c.discountRate)).Floor()

	discountedPrice = discounted.IntPart()
	discountAmount = basePrice - discountedPrice
	return discountedPrice, discountAmount
}

// Reward computes the referrer-side credit for a sale amount.
//
// rewardAmount = floor(amount * 0.10)
func (c *RewardCalculator) Reward(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(c.rewardRate).Floor().IntPart()
}
