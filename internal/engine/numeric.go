package engine

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// NonNegative 负数按 0 处理，保证计算结果不出现赤字
func NonNegative(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}

// percentOf 计算 base × pct%
func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
