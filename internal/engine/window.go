package engine

import "time"

// MonthWindow 自然月统计区间 [Start, End)
type MonthWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewMonthWindow 按年月构造统计区间，loc 为空时使用 UTC
func NewMonthWindow(year int, month time.Month, loc *time.Location) MonthWindow {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return MonthWindow{
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

// MonthWindowOf 返回 t 所在自然月的统计区间
func MonthWindowOf(t time.Time) MonthWindow {
	return NewMonthWindow(t.Year(), t.Month(), t.Location())
}

// Contains 判断时间是否落在区间内
func (w MonthWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Year 区间所属年份
func (w MonthWindow) Year() int {
	return w.Start.Year()
}

// Month 区间所属月份
func (w MonthWindow) Month() time.Month {
	return w.Start.Month()
}

// MonthIndex 区间所属月份（0 起）
func (w MonthWindow) MonthIndex() int {
	return int(w.Start.Month()) - 1
}
