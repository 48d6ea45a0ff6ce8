package market

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"finsight/internal/common"
	"finsight/internal/indicators"
)

// RenderPriceChart renders a PNG line chart of the configured history window:
// daily closes with SMA overlays where the series is long enough. Returns raw
// PNG bytes.
func (s *Service) RenderPriceChart(ctx context.Context, ticker string) ([]byte, error) {
	series, err := s.GetHistory(ctx, ticker, s.historyRange)
	if err != nil {
		return nil, err
	}
	if len(series) < 2 {
		return nil, common.Upstreamf("insufficient history to chart %s: %d sessions", ticker, len(series))
	}

	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	closes := series.Closes()
	xValues := make([]time.Time, len(series))
	for i, bar := range series {
		xValues[i] = bar.Date
	}

	closeSeries := chart.TimeSeries{
		Name: symbol + " Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.0,
		},
		XValues: xValues,
		YValues: closes,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Price (%s)", symbol, s.historyRange),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{closeSeries},
	}

	if overlay, ok := smaOverlay("SMA 20", closes, xValues, indicators.SMAShortPeriod, "f59e0b"); ok {
		graph.Series = append(graph.Series, overlay)
	}
	if overlay, ok := smaOverlay("SMA 50", closes, xValues, indicators.SMALongPeriod, "9ca3af"); ok {
		graph.Series = append(graph.Series, overlay)
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	s.logger.Debug().Str("ticker", symbol).Int("bytes", buf.Len()).Msg("Price chart rendered")
	return buf.Bytes(), nil
}

// smaOverlay builds a dashed rolling-average series aligned to the dates it
// covers. ok is false when the window exceeds the series.
func smaOverlay(name string, closes []float64, xValues []time.Time, window int, hexColor string) (chart.TimeSeries, bool) {
	if window <= 0 || len(closes) < window {
		return chart.TimeSeries{}, false
	}

	values := make([]float64, 0, len(closes)-window+1)
	var sum float64
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			values = append(values, sum/float64(window))
		}
	}

	return chart.TimeSeries{
		Name: name,
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex(hexColor),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues[window-1:],
		YValues: values,
	}, true
}
