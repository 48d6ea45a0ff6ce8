package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"finsight/internal/common"
	"finsight/internal/models"
)

// Suggestions returned with help responses when no ticker could be resolved
// or the question was too general to route.
var helpSuggestions = []string{
	"Analyze Apple",
	"What's Tesla's performance?",
	"Technical analysis of Microsoft",
	"How is Amazon doing?",
	"Show me Apple's RSI",
	"What's the price of Google?",
}

// Composer builds the intent-shaped responses. It is pure: no I/O, fully
// deterministic for a given clock.
type Composer struct {
	moodMild   float64
	moodStrong float64
	now        func() time.Time
}

// NewComposer creates a composer with mood thresholds from config. Values
// that make no sense (zero, inverted) fall back to the 1%/2% defaults.
func NewComposer(cfg common.QueryConfig) *Composer {
	mild, strong := cfg.MoodMildPct, cfg.MoodStrongPct
	if mild <= 0 {
		mild = 1.0
	}
	if strong <= mild {
		strong = mild + 1.0
	}
	return &Composer{moodMild: mild, moodStrong: strong, now: time.Now}
}

func (c *Composer) envelope(message string) models.Envelope {
	return models.Envelope{Success: true, Message: message, Timestamp: c.now().UTC()}
}

// Price composes the answer to a price question.
func (c *Composer) Price(question, ticker string, quote *models.Quote) *models.PriceResponse {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is currently trading at $%.2f. %s",
		displayName(quote.Name, ticker), quote.Price, c.moodSentence(quote.Change, quote.ChangePct))
	if quote.Volume > 0 {
		fmt.Fprintf(&b, " Trading activity is %s (%s shares).",
			VolumeActivity(quote.Volume), groupThousands(quote.Volume))
	}

	return &models.PriceResponse{
		Envelope: c.envelope(b.String()),
		Query:    question,
		Intent:   models.IntentPrice,
		Ticker:   ticker,
		Quote:    quote,
	}
}

// Technical composes a technical-analysis report. For the analysis intent the
// same shape is reused with directory context folded in when available.
func (c *Composer) Technical(question string, intent models.Intent, report *models.TechnicalReport, company *models.CompanyRecord) *models.TechnicalResponse {
	var b strings.Builder

	if intent == models.IntentAnalysis {
		b.WriteString("COMPREHENSIVE COMPANY ANALYSIS\n")
	} else {
		b.WriteString("TECHNICAL ANALYSIS REPORT\n")
	}
	if company != nil {
		fmt.Fprintf(&b, "Company: %s (%s)\n", company.Name, report.Ticker)
		if company.Sector != "" {
			fmt.Fprintf(&b, "Sector: %s\n", company.Sector)
		}
		if company.Industry != "" {
			fmt.Fprintf(&b, "Industry: %s\n", company.Industry)
		}
		if company.Rank > 0 {
			fmt.Fprintf(&b, "Market Cap Rank: #%d\n", company.Rank)
		}
		if company.MarketCap > 0 {
			fmt.Fprintf(&b, "Market Cap: %s (%s)\n",
				FormatMarketCap(company.MarketCap), MarketCapCategory(company.MarketCap))
		}
	} else {
		fmt.Fprintf(&b, "Ticker: %s\n", report.Ticker)
	}
	b.WriteString(strings.Repeat("-", 50) + "\n")

	b.WriteString("\nPRICE ANALYSIS:\n")
	fmt.Fprintf(&b, "Current Price: $%.2f\n", report.Price)
	fmt.Fprintf(&b, "Daily Change: $%.2f (%+.2f%%)\n", report.Change, report.ChangePct)
	if report.PeriodHigh > 0 && report.PeriodLow > 0 {
		fmt.Fprintf(&b, "6-Month High: $%.2f\n", report.PeriodHigh)
		fmt.Fprintf(&b, "6-Month Low: $%.2f\n", report.PeriodLow)
		if pos, ok := rangePosition(report.Price, report.PeriodLow, report.PeriodHigh); ok {
			fmt.Fprintf(&b, "Position in Range: %.1f%%\n", pos)
			b.WriteString(rangeLevelLine(pos))
		}
	}
	if report.AvgVolume > 0 {
		fmt.Fprintf(&b, "Average Volume: %s\n", groupThousands(report.AvgVolume))
	}

	b.WriteString("\nTECHNICAL INDICATORS:\n")
	ind := report.Indicators
	if ind.RSI.Value != nil {
		fmt.Fprintf(&b, "RSI (14-day): %.2f\n", *ind.RSI.Value)
		b.WriteString(rsiSignalLine(ind.RSI.Label))
	}
	if ind.SMA20 != nil || ind.SMA50 != nil || ind.EMA12 != nil || ind.EMA26 != nil {
		b.WriteString("\nMOVING AVERAGES:\n")
		writeIndicatorLine(&b, "SMA 20", ind.SMA20)
		writeIndicatorLine(&b, "SMA 50", ind.SMA50)
		writeIndicatorLine(&b, "EMA 12", ind.EMA12)
		writeIndicatorLine(&b, "EMA 26", ind.EMA26)
		switch ind.Trend {
		case "up":
			b.WriteString("Trend: BULLISH (SMA20 above SMA50)\n")
		case "down":
			b.WriteString("Trend: BEARISH (SMA20 below SMA50)\n")
		}
	}
	if ind.Bollinger != nil {
		b.WriteString("\nBOLLINGER BANDS:\n")
		fmt.Fprintf(&b, "Upper Band: $%.2f\n", ind.Bollinger.Upper)
		fmt.Fprintf(&b, "Middle Band: $%.2f\n", ind.Bollinger.Middle)
		fmt.Fprintf(&b, "Lower Band: $%.2f\n", ind.Bollinger.Lower)
		b.WriteString(bollingerPositionLine(report.BollingerPosition))
	}
	if ind.Volatility != nil {
		fmt.Fprintf(&b, "\nAnnualized Volatility: %.1f%%\n", *ind.Volatility*100)
	}

	return &models.TechnicalResponse{
		Envelope: c.envelope(b.String()),
		Query:    question,
		Intent:   intent,
		Ticker:   report.Ticker,
		Report:   report,
		Company:  company,
	}
}

// Company composes the answer to a company-information question. The
// directory record may be nil when only quote data is known.
func (c *Composer) Company(question, ticker string, company *models.CompanyRecord, quote *models.Quote) *models.CompanyResponse {
	var b strings.Builder

	name := ticker
	if company != nil && company.Name != "" {
		name = company.Name
	} else if quote != nil && quote.Name != "" {
		name = quote.Name
	}
	fmt.Fprintf(&b, "Here's information about %s (%s).", name, ticker)

	if company != nil {
		if company.Sector != "" {
			fmt.Fprintf(&b, " Sector: %s.", company.Sector)
		}
		if company.Industry != "" {
			fmt.Fprintf(&b, " Industry: %s.", company.Industry)
		}
		if company.Rank > 0 {
			fmt.Fprintf(&b, " Ranked #%d by market cap.", company.Rank)
		}
		if company.Revenue > 0 {
			fmt.Fprintf(&b, " Annual revenue: $%s million.", groupThousands(int64(company.Revenue)))
		}
	}
	if quote != nil {
		fmt.Fprintf(&b, " Current price: $%.2f (%+.2f%%).", quote.Price, quote.ChangePct)
		if quote.MarketCap > 0 {
			fmt.Fprintf(&b, " Market cap: %s (%s).",
				FormatMarketCap(quote.MarketCap), MarketCapCategory(quote.MarketCap))
		}
	}

	return &models.CompanyResponse{
		Envelope: c.envelope(b.String()),
		Query:    question,
		Intent:   models.IntentCompanyInfo,
		Ticker:   ticker,
		Company:  company,
		Quote:    quote,
	}
}

// Performance composes the answer to a financial-performance question.
// Margin is computed only when the directory knows both revenue and profit.
func (c *Composer) Performance(question, ticker string, company *models.CompanyRecord, quote *models.Quote) *models.PerformanceResponse {
	var b strings.Builder
	var margin *float64

	name := ticker
	if company != nil && company.Name != "" {
		name = company.Name
	} else if quote != nil && quote.Name != "" {
		name = quote.Name
	}
	fmt.Fprintf(&b, "FINANCIAL PERFORMANCE: %s (%s)\n", name, ticker)

	if quote != nil {
		fmt.Fprintf(&b, "Current Price: $%.2f\n", quote.Price)
		fmt.Fprintf(&b, "Daily Change: $%.2f (%+.2f%%)\n", quote.Change, quote.ChangePct)
		if quote.MarketCap > 0 {
			fmt.Fprintf(&b, "Market Cap: %s (%s)\n",
				FormatMarketCap(quote.MarketCap), MarketCapCategory(quote.MarketCap))
		}
	}
	if company != nil && company.Revenue > 0 {
		fmt.Fprintf(&b, "Annual Revenue: $%s million\n", groupThousands(int64(company.Revenue)))
		if company.Profit != 0 {
			fmt.Fprintf(&b, "Annual Profit: $%s million\n", groupThousands(int64(company.Profit)))
			m := company.Profit / company.Revenue * 100
			margin = &m
			fmt.Fprintf(&b, "Profit Margin: %.1f%%\n", m)
		}
	}
	if quote != nil && quote.Volume > 0 {
		fmt.Fprintf(&b, "Volume Today: %s shares (%s activity)\n",
			groupThousands(quote.Volume), VolumeActivity(quote.Volume))
	}

	return &models.PerformanceResponse{
		Envelope:     c.envelope(b.String()),
		Query:        question,
		Intent:       models.IntentPerformance,
		Ticker:       ticker,
		Company:      company,
		Quote:        quote,
		ProfitMargin: margin,
	}
}

// Help composes the fallback response for general questions. When the
// assistant produced an answer it becomes the message body; otherwise static
// help text is used. Suggestions ride along either way.
func (c *Composer) Help(question, assistantAnswer string) *models.HelpResponse {
	message := assistantAnswer
	if message == "" {
		message = "I can help you with stock analysis! Try asking questions like the suggestions below."
	}
	return &models.HelpResponse{
		Envelope:    c.envelope(message),
		Query:       question,
		Intent:      models.IntentGeneral,
		Suggestions: helpSuggestions,
	}
}

// Clarify composes the response for questions whose ticker could not be
// resolved. Not an error: the caller is asked to name a company.
func (c *Composer) Clarify(question string, intent models.Intent) *models.HelpResponse {
	return &models.HelpResponse{
		Envelope:    c.envelope("Please name a company or ticker (e.g., AAPL, Tesla) so I know what to look up."),
		Query:       question,
		Intent:      intent,
		Suggestions: helpSuggestions,
	}
}

// moodSentence renders the qualitative tone for a daily move. Thresholds are
// percentages of the previous close.
func (c *Composer) moodSentence(change, pct float64) string {
	switch {
	case pct > c.moodStrong:
		return fmt.Sprintf("The stock is having a great day, up $%.2f (%+.2f%%).", change, pct)
	case pct > c.moodMild:
		return fmt.Sprintf("Great news: the stock is doing well today, up $%.2f (%+.2f%%).", change, pct)
	case pct > 0:
		return fmt.Sprintf("Good news: the stock is up a little today, $%.2f (%+.2f%%).", change, pct)
	case pct < -c.moodStrong:
		return fmt.Sprintf("The stock is having a tough day, down $%.2f (%.2f%%).", -change, pct)
	case pct < -c.moodMild:
		return fmt.Sprintf("Not so great today: the stock is down $%.2f (%.2f%%).", -change, pct)
	default:
		return fmt.Sprintf("The stock is pretty steady today (%+.2f%%).", pct)
	}
}

// MarketCapCategory buckets a market cap in dollars into the conventional
// capitalization tiers.
func MarketCapCategory(cap float64) string {
	switch {
	case cap > 1e12:
		return "Mega Cap"
	case cap > 200e9:
		return "Large Cap"
	case cap > 10e9:
		return "Mid Cap"
	case cap > 2e9:
		return "Small Cap"
	default:
		return "Micro Cap"
	}
}

// FormatMarketCap renders a dollar market cap in trillions, billions or
// millions, whichever reads naturally.
func FormatMarketCap(cap float64) string {
	switch {
	case cap >= 1e12:
		return fmt.Sprintf("$%.2fT", cap/1e12)
	case cap >= 1e9:
		return fmt.Sprintf("$%.1fB", cap/1e9)
	default:
		return fmt.Sprintf("$%.0fM", cap/1e6)
	}
}

// VolumeActivity buckets a daily share volume into a qualitative level.
func VolumeActivity(volume int64) string {
	switch {
	case volume > 50_000_000:
		return "very high"
	case volume > 10_000_000:
		return "high"
	case volume > 1_000_000:
		return "moderate"
	default:
		return "light"
	}
}

func displayName(name, ticker string) string {
	if name == "" {
		return ticker
	}
	return fmt.Sprintf("%s (%s)", name, ticker)
}

func rsiSignalLine(label string) string {
	switch label {
	case "overbought":
		return "Signal: OVERBOUGHT - potential sell signal\n"
	case "oversold":
		return "Signal: OVERSOLD - potential buy signal\n"
	default:
		return "Signal: NEUTRAL - no strong directional bias\n"
	}
}

func bollingerPositionLine(position string) string {
	switch position {
	case "above upper band":
		return "Position: Above upper band (overbought)\n"
	case "below lower band":
		return "Position: Below lower band (oversold)\n"
	case "within bands":
		return "Position: Within bands (normal range)\n"
	default:
		return ""
	}
}

// rangePosition places price inside [low, high] as a percentage. Not
// meaningful when the bounds collapse.
func rangePosition(price, low, high float64) (float64, bool) {
	if high <= low {
		return 0, false
	}
	return (price - low) / (high - low) * 100, true
}

func rangeLevelLine(pos float64) string {
	switch {
	case pos > 80:
		return "Price Level: Near 6-month highs\n"
	case pos < 20:
		return "Price Level: Near 6-month lows\n"
	default:
		return "Price Level: Mid-range\n"
	}
}

func writeIndicatorLine(b *strings.Builder, label string, value *float64) {
	if value != nil {
		fmt.Fprintf(b, "%s: $%.2f\n", label, *value)
	}
}

// groupThousands formats n with comma separators, e.g. 58234123 becomes
// "58,234,123".
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
