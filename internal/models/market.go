package models

import "time"

// PriceBar represents a single trading session
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is a sequence of bars ascending by date. Missing sessions are
// simply absent; indicator math tolerates short series by yielding null
// outputs rather than failing.
type PriceSeries []PriceBar

// Closes returns the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar, or false when the series is empty.
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s) == 0 {
		return PriceBar{}, false
	}
	return s[len(s)-1], true
}

// Quote holds a point-in-time market snapshot for a ticker
type Quote struct {
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name,omitempty"`
	Price         float64   `json:"price"`
	PreviousClose float64   `json:"previous_close"`
	Change        float64   `json:"change"`         // absolute change from previous close
	ChangePct     float64   `json:"change_percent"` // percentage change from previous close
	Volume        int64     `json:"volume"`
	AvgVolume     int64     `json:"avg_volume,omitempty"`
	MarketCap     float64   `json:"market_cap,omitempty"`
	High52Week    float64   `json:"fifty_two_week_high,omitempty"`
	Low52Week     float64   `json:"fifty_two_week_low,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	AsOf          time.Time `json:"as_of"`
}

// RSISnapshot pairs an RSI value with its interpretation label.
// Value is nil when the series is too short to compute.
type RSISnapshot struct {
	Value *float64 `json:"value"`
	Label string   `json:"label,omitempty"` // "overbought", "oversold", "neutral"
}

// BollingerBands holds the three band values; absent as a unit when the
// series has fewer than the window's observations.
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// IndicatorResult is a point-in-time indicator snapshot derived
// deterministically from a PriceSeries. Each field is nullable on its own so
// a short series yields partial results instead of an error.
type IndicatorResult struct {
	RSI        RSISnapshot     `json:"rsi"`
	SMA20      *float64        `json:"sma_20"`
	SMA50      *float64        `json:"sma_50"`
	EMA12      *float64        `json:"ema_12"`
	EMA26      *float64        `json:"ema_26"`
	Bollinger  *BollingerBands `json:"bollinger"`
	Volatility *float64        `json:"volatility"` // annualized, fraction not percent
	Trend      string          `json:"trend,omitempty"`
}

// TechnicalReport combines a price snapshot with computed indicators
type TechnicalReport struct {
	Ticker            string          `json:"ticker"`
	Price             float64         `json:"price"`
	Change            float64         `json:"change"`
	ChangePct         float64         `json:"change_percent"`
	Indicators        IndicatorResult `json:"indicators"`
	BollingerPosition string          `json:"bollinger_position,omitempty"`
	PeriodHigh        float64         `json:"period_high,omitempty"`
	PeriodLow         float64         `json:"period_low,omitempty"`
	AvgVolume         int64           `json:"avg_volume,omitempty"`
	Sessions          int             `json:"sessions"` // bars the report was computed from
	AsOf              time.Time       `json:"as_of"`
}
