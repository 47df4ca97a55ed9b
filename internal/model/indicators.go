package model

// PeriodStats summarizes one company's prices over the selected period.
type PeriodStats struct {
	Company   string  `json:"company"`
	First     float64 `json:"first"`
	Last      float64 `json:"last"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Average   float64 `json:"average"`
	ChangePct float64 `json:"change_pct"`
	Position  float64 `json:"position"` // 0.0 ~ 1.0 within [Low, High]
}
