package models

type MarketPrice struct {
	ID               string  `json:"id"`
	MarketName       string  `json:"market_name"`
	Location         string  `json:"location"`
	ItemName         string  `json:"item_name"`
	Unit             string  `json:"unit"`
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	TrendDirection   string  `json:"trend_direction"`
	PercentageChange float64 `json:"percentage_change"`
	DateRecorded     string  `json:"date_recorded"`
	Source           *string `json:"source,omitempty"`
	IsActive         bool    `json:"is_active"`
}
