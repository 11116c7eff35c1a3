package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// PercentScale 百分比字段的存储精度，与 decimal(9,6) 列一致
const PercentScale = 6

// Percent 百分比类型（佣金比例、权益比例、收益上限），按录入值原样保存，不做 2 位小数取整
type Percent struct {
	decimal.Decimal
}

// NewPercentFromDecimal 从 decimal 创建百分比
func NewPercentFromDecimal(value decimal.Decimal) Percent {
	return Percent{Decimal: value.Round(PercentScale)}
}

// NewPercentFromString 从字符串创建百分比，解析失败按 0 处理
func NewPercentFromString(raw string) Percent {
	return NewPercentFromDecimal(ParseDecimal(raw))
}

// MarshalJSON 输出去除多余尾零的字符串
func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Decimal.String())
}

// UnmarshalJSON 解析百分比（字符串或数字）
func (p *Percent) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		p.Decimal = decimal.Zero
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = s
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		p.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return err
	}
	p.Decimal = d.Round(PercentScale)
	return nil
}

// Value 用于数据库写入
func (p Percent) Value() (driver.Value, error) {
	return p.Decimal.Round(PercentScale).String(), nil
}

// Scan 用于数据库读取
func (p *Percent) Scan(value interface{}) error {
	if value == nil {
		p.Decimal = decimal.Zero
		return nil
	}
	if err := p.Decimal.Scan(value); err != nil {
		return err
	}
	p.Decimal = p.Decimal.Round(PercentScale)
	return nil
}

// String 返回原样精度的字符串
func (p Percent) String() string {
	return p.Decimal.String()
}
