// Package indicators provides technical indicator calculations over a price
// series ordered ascending by date (oldest first, newest last).
package indicators

import (
	"math"

	"finsight/internal/models"
)

// Default periods and thresholds. The RSI label boundaries and band width
// are conventions, not derived values; they are overridable via Engine.
const (
	DefaultRSIPeriod  = 14
	DefaultOverbought = 70.0
	DefaultOversold   = 30.0

	BollingerPeriod = 20
	BollingerWidth  = 2.0

	VolatilityWindow   = 20
	TradingDaysPerYear = 252
)

// SMA returns the arithmetic mean of the last period closes, or nil when the
// series is shorter than period.
func SMA(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}
	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	v := sum / float64(period)
	return &v
}

// EMA returns the exponential moving average with smoothing 2/(period+1),
// seeded from the first close and folded across the whole series. Nil when
// the series is shorter than period.
func EMA(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}
	k := 2.0 / float64(period+1)
	ema := closes[0]
	for _, c := range closes[1:] {
		ema = c*k + ema*(1-k)
	}
	return &ema
}

// RSI returns the Relative Strength Index over the trailing period deltas.
// The series' first delta counts as zero, so a series of exactly period
// closes is still computable. Averages are simple means, not Wilder
// smoothing. avgLoss == 0 yields 100. Nil when the series is shorter than
// period.
func RSI(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}

	// deltas[0] is the zero placeholder for the first close
	deltas := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		deltas[i] = closes[i] - closes[i-1]
	}

	var avgGain, avgLoss float64
	for _, d := range deltas[len(deltas)-period:] {
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		v := 100.0
		return &v
	}
	rs := avgGain / avgLoss
	v := 100.0 - 100.0/(1.0+rs)
	return &v
}

// Bollinger returns the (middle ± width×stddev) bands over the last period
// closes, sample standard deviation, or nil when the series is too short.
func Bollinger(closes []float64, period int, width float64) *models.BollingerBands {
	middle := SMA(closes, period)
	if middle == nil {
		return nil
	}
	sd := stddev(closes[len(closes)-period:])
	return &models.BollingerBands{
		Upper:  *middle + width*sd,
		Middle: *middle,
		Lower:  *middle - width*sd,
	}
}

// Volatility returns the annualized standard deviation of daily percent
// returns over the trailing window sessions (sample stddev, scaled by
// sqrt(252)). Nil when fewer than two returns are available.
func Volatility(closes []float64, window int) *float64 {
	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	if len(returns) > window {
		returns = returns[len(returns)-window:]
	}
	if len(returns) < 2 {
		return nil
	}
	v := stddev(returns) * math.Sqrt(TradingDaysPerYear)
	return &v
}

// Trend reports "up" when the short average sits above the long one, "down"
// otherwise, and "" when either average is unavailable.
func Trend(smaShort, smaLong *float64) string {
	if smaShort == nil || smaLong == nil {
		return ""
	}
	if *smaShort > *smaLong {
		return "up"
	}
	return "down"
}

// BollingerPosition describes where price sits relative to the bands.
func BollingerPosition(price float64, bands *models.BollingerBands) string {
	if bands == nil {
		return ""
	}
	switch {
	case price > bands.Upper:
		return "above upper band"
	case price < bands.Lower:
		return "below lower band"
	default:
		return "within bands"
	}
}

// Label interprets an RSI value against the given boundaries.
func Label(rsi, overbought, oversold float64) string {
	switch {
	case rsi >= overbought:
		return "overbought"
	case rsi <= oversold:
		return "oversold"
	default:
		return "neutral"
	}
}

// PeriodHigh returns the highest high of the series, 0 when empty.
func PeriodHigh(series models.PriceSeries) float64 {
	high := 0.0
	for _, b := range series {
		if b.High > high {
			high = b.High
		}
	}
	return high
}

// PeriodLow returns the lowest low of the series, 0 when empty.
func PeriodLow(series models.PriceSeries) float64 {
	if len(series) == 0 {
		return 0
	}
	low := math.Inf(1)
	for _, b := range series {
		if b.Low < low {
			low = b.Low
		}
	}
	if math.IsInf(low, 1) {
		return 0
	}
	return low
}

// AverageVolume returns the mean volume of the last n bars, 0 when empty.
func AverageVolume(series models.PriceSeries, n int) int64 {
	if len(series) == 0 || n <= 0 {
		return 0
	}
	if len(series) < n {
		n = len(series)
	}
	var sum int64
	for _, b := range series[len(series)-n:] {
		sum += b.Volume
	}
	return sum / int64(n)
}

// stddev is the sample standard deviation (n-1 denominator), 0 for fewer
// than two values.
func stddev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
