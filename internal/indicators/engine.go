package indicators

import (
	"errors"

	"finsight/internal/models"
)

// Moving-average periods used by the standard snapshot.
const (
	SMAShortPeriod = 20
	SMALongPeriod  = 50
	EMAFastPeriod  = 12
	EMASlowPeriod  = 26
)

// Engine computes the standard indicator snapshot for a price series. The
// RSI period and label boundaries are fields so config can tune them without
// touching the math.
type Engine struct {
	RSIPeriod  int
	Overbought float64
	Oversold   float64
}

// NewEngine returns an Engine with the default period and thresholds.
func NewEngine() *Engine {
	return &Engine{
		RSIPeriod:  DefaultRSIPeriod,
		Overbought: DefaultOverbought,
		Oversold:   DefaultOversold,
	}
}

// Compute derives an IndicatorResult from the series. Short series yield
// partial results with nil fields; only an empty series is an error.
func (e *Engine) Compute(series models.PriceSeries) (models.IndicatorResult, error) {
	if len(series) == 0 {
		return models.IndicatorResult{}, errors.New("empty price series")
	}

	closes := series.Closes()
	result := models.IndicatorResult{
		SMA20:      SMA(closes, SMAShortPeriod),
		SMA50:      SMA(closes, SMALongPeriod),
		EMA12:      EMA(closes, EMAFastPeriod),
		EMA26:      EMA(closes, EMASlowPeriod),
		Bollinger:  Bollinger(closes, BollingerPeriod, BollingerWidth),
		Volatility: Volatility(closes, VolatilityWindow),
	}

	if rsi := RSI(closes, e.RSIPeriod); rsi != nil {
		result.RSI = models.RSISnapshot{
			Value: rsi,
			Label: Label(*rsi, e.Overbought, e.Oversold),
		}
	}

	result.Trend = Trend(result.SMA20, result.SMA50)
	return result, nil
}
