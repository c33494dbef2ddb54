package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	calc := NewRewardCalculator()

	tests := []struct {
		name           string
		basePrice      int64
		wantDiscounted int64
		wantDiscount   int64
	}{
		{"list price", 239000, 227050, 11950},
		{"floors fractional result", 99999, 94999, 5000},
		{"small amount", 100, 95, 5},
		{"one won", 1, 0, 1},
		{"zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discounted, discount := calc.Quote(tt.basePrice)
			assert.Equal(t, tt.wantDiscounted, discounted)
			assert.Equal(t, tt.wantDiscount, discount)
			assert.Equal(t, tt.basePrice, discounted+discount, "discount must account for every won")
		})
	}
}

func TestReward(t *testing.T) {
	calc := NewRewardCalculator()

	assert.Equal(t, int64(23900), calc.Reward(239000))
	assert.Equal(t, int64(22705), calc.Reward(227050))
	assert.Equal(t, int64(9), calc.Reward(99), "fractional reward floors")
	assert.Equal(t, int64(0), calc.Reward(9))
	assert.Equal(t, int64(0), calc.Reward(0))
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := generateCode(codeLength)
		assert.NoError(t, err)
		assert.Len(t, code, codeLength)
		for _, r := range code {
			assert.Contains(t, codeAlphabet, string(r))
		}
		seen[code] = true
	}
	// 1000 draws from a 32^8 space should not collide.
	assert.Len(t, seen, 1000)
}
