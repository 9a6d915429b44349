package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateDiscountTiers(t *testing.T) {
	cases := []struct {
		name string
		in   Factors
		want string
	}{
		{"five containers never qualify", Factors{Containers: 5, Quarantine: true, Fumigation: true}, "0"},
		{"five with quarantine only", Factors{Containers: 5, Quarantine: true}, "0"},
		{"six with quarantine", Factors{Containers: 6, Quarantine: true}, "2.5"},
		{"six with fumigation", Factors{Containers: 6, Fumigation: true}, "2.5"},
		{"six with both", Factors{Containers: 6, Quarantine: true, Fumigation: true}, "5"},
		{"ten with both", Factors{Containers: 10, Quarantine: true, Fumigation: true}, "5"},
		{"eleven with both", Factors{Containers: 11, Quarantine: true, Fumigation: true}, "10"},
		{"eleven with one flag", Factors{Containers: 11, Fumigation: true}, "2.5"},
		{"many without flags", Factors{Containers: 40}, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateDiscount(tc.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestCalculateDiscountSmallRequestsAlwaysZero(t *testing.T) {
	for containers := 0; containers <= 5; containers++ {
		for _, q := range []bool{false, true} {
			for _, f := range []bool{false, true} {
				got := CalculateDiscount(Factors{Containers: containers, Quarantine: q, Fumigation: f})
				assert.True(t, got.IsZero(), "containers=%d q=%v f=%v", containers, q, f)
			}
		}
	}
}

func TestCalculateDiscountAmountIsExact(t *testing.T) {
	got := CalculateDiscountAmount(decimal.NewFromInt(2000), decimal.RequireFromString("2.5"))
	assert.Equal(t, "50", got.String())

	got = CalculateDiscountAmount(decimal.RequireFromString("0.10"), decimal.RequireFromString("2.5"))
	assert.Equal(t, "0.0025", got.String())
}
