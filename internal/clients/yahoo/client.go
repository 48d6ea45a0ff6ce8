// Package yahoo provides a client for the Yahoo Finance public API
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"finsight/internal/common"
	"finsight/internal/interfaces"
	"finsight/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
	DefaultRetries   = 1

	// Yahoo rejects requests without a browser-looking agent
	userAgent = "Mozilla/5.0"

	retryDelay = 500 * time.Millisecond
)

// validRanges are the windows the chart API accepts for daily bars.
var validRanges = map[string]struct{}{
	"1d": {}, "5d": {}, "1mo": {}, "3mo": {}, "6mo": {},
	"1y": {}, "2y": {}, "5y": {}, "max": {},
}

// Client implements the MarketDataClient interface against Yahoo's v8 chart
// and v10 quoteSummary endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	retries    int
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetries sets how many times a failed request is retried. Retries apply
// to network failures and 5xx responses only.
func WithRetries(retries int) ClientOption {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		retries: DefaultRetries,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an upstream API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request, retrying once on transient
// failures. 4xx responses are returned immediately.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	c.logger.Debug().Str("endpoint", path).Msg("Yahoo API request")

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			c.logger.Debug().Str("endpoint", path).Int("attempt", attempt+1).Msg("Retrying Yahoo API request")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to execute request: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				Message:    strings.TrimSpace(string(body)),
				Endpoint:   path,
			}
			if resp.StatusCode >= 500 {
				lastErr = apiErr
				continue
			}
			return apiErr
		}

		err = json.NewDecoder(resp.Body).Decode(result)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return lastErr
}

// translateErr maps transport failures onto the shared error taxonomy so
// callers can test sentinels instead of inspecting status codes.
func translateErr(err error, ticker string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return common.NotFoundf("ticker %s", ticker)
	}
	return common.Upstreamf("yahoo request for %s failed: %v", ticker, err)
}

// chartResponse is the v8 chart API envelope. OHLCV arrays carry JSON nulls
// on non-trading sessions, hence interface{} elements.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// GetHistory retrieves daily bars for a range like "1mo", "6mo", "1y".
// Bars are returned ascending by date with null sessions dropped.
func (c *Client) GetHistory(ctx context.Context, ticker string, rng string) (models.PriceSeries, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, common.InvalidInputf("ticker required")
	}
	if rng == "" {
		rng = "6mo"
	}
	if _, ok := validRanges[rng]; !ok {
		return nil, common.InvalidInputf("invalid history range %q", rng)
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", rng)

	var chart chartResponse
	path := "/v8/finance/chart/" + url.PathEscape(ticker)
	if err := c.get(ctx, path, params, &chart); err != nil {
		return nil, translateErr(err, ticker)
	}

	if chart.Chart.Error != nil {
		if strings.EqualFold(chart.Chart.Error.Code, "Not Found") {
			return nil, common.NotFoundf("ticker %s", ticker)
		}
		return nil, common.Upstreamf("yahoo chart error for %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, common.NotFoundf("no price data for %s", ticker)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, common.NotFoundf("no price data for %s", ticker)
	}
	quote := result.Indicators.Quote[0]

	series := make(models.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // null bars on holidays etc.
		}
		series = append(series, models.PriceBar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: int64(toFloat(quote.Volume[i])),
		})
	}

	if len(series) == 0 {
		return nil, common.NotFoundf("no price data for %s", ticker)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	c.logger.Debug().Str("ticker", ticker).Str("range", rng).Int("bars", len(series)).Msg("Yahoo history fetched")
	return series, nil
}

// quoteSummaryResponse is the v10 quoteSummary envelope. Numeric fields
// arrive as {raw, fmt} objects; only raw is read.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResult struct {
	Price struct {
		RegularMarketPrice         rawValue `json:"regularMarketPrice"`
		RegularMarketChange        rawValue `json:"regularMarketChange"`
		RegularMarketChangePercent rawValue `json:"regularMarketChangePercent"`
		RegularMarketPreviousClose rawValue `json:"regularMarketPreviousClose"`
		RegularMarketVolume        rawValue `json:"regularMarketVolume"`
		AverageVolume              rawValue `json:"averageDailyVolume10Day"`
		MarketCap                  rawValue `json:"marketCap"`
		LongName                   string   `json:"longName"`
		ShortName                  string   `json:"shortName"`
		Symbol                     string   `json:"symbol"`
		Currency                   string   `json:"currency"`
	} `json:"price"`
	SummaryDetail struct {
		FiftyTwoWeekLow  rawValue `json:"fiftyTwoWeekLow"`
		FiftyTwoWeekHigh rawValue `json:"fiftyTwoWeekHigh"`
		PreviousClose    rawValue `json:"previousClose"`
	} `json:"summaryDetail"`
	AssetProfile struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
	FinancialData struct {
		TotalRevenue rawValue `json:"totalRevenue"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		NetIncomeToCommon rawValue `json:"netIncomeToCommon"`
	} `json:"defaultKeyStatistics"`
}

// quoteSummary fetches the requested modules for a ticker.
func (c *Client) quoteSummary(ctx context.Context, ticker string, modules string) (*quoteSummaryResult, error) {
	params := url.Values{}
	params.Set("modules", modules)

	var summary quoteSummaryResponse
	path := "/v10/finance/quoteSummary/" + url.PathEscape(ticker)
	if err := c.get(ctx, path, params, &summary); err != nil {
		return nil, translateErr(err, ticker)
	}

	if summary.QuoteSummary.Error != nil {
		if strings.EqualFold(summary.QuoteSummary.Error.Code, "Not Found") {
			return nil, common.NotFoundf("ticker %s", ticker)
		}
		return nil, common.Upstreamf("yahoo quoteSummary error for %s: %s", ticker, summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, common.NotFoundf("ticker %s", ticker)
	}

	return &summary.QuoteSummary.Result[0], nil
}

// GetQuote retrieves a current quote with fundamentals. A result with no
// price and no name is treated as unknown rather than returned as a zeroed
// record.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, common.InvalidInputf("ticker required")
	}

	result, err := c.quoteSummary(ctx, ticker, "price,summaryDetail")
	if err != nil {
		return nil, err
	}

	price := result.Price
	if price.RegularMarketPrice.Raw == 0 && price.ShortName == "" && price.LongName == "" {
		return nil, common.NotFoundf("ticker %s", ticker)
	}

	name := price.LongName
	if name == "" {
		name = price.ShortName
	}
	previousClose := price.RegularMarketPreviousClose.Raw
	if previousClose == 0 {
		previousClose = result.SummaryDetail.PreviousClose.Raw
	}

	quote := &models.Quote{
		Ticker:        ticker,
		Name:          name,
		Price:         price.RegularMarketPrice.Raw,
		PreviousClose: previousClose,
		Change:        price.RegularMarketChange.Raw,
		ChangePct:     price.RegularMarketChangePercent.Raw,
		Volume:        int64(price.RegularMarketVolume.Raw),
		AvgVolume:     int64(price.AverageVolume.Raw),
		MarketCap:     price.MarketCap.Raw,
		High52Week:    result.SummaryDetail.FiftyTwoWeekHigh.Raw,
		Low52Week:     result.SummaryDetail.FiftyTwoWeekLow.Raw,
		Currency:      price.Currency,
		AsOf:          time.Now().UTC(),
	}

	c.logger.Debug().Str("ticker", ticker).Float64("price", quote.Price).Msg("Yahoo quote fetched")
	return quote, nil
}

// GetProfile retrieves the company identity and fundamentals used by the
// directory refresh. Revenue and profit are reported in millions.
func (c *Client) GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, common.InvalidInputf("ticker required")
	}

	result, err := c.quoteSummary(ctx, ticker, "price,assetProfile,financialData,defaultKeyStatistics")
	if err != nil {
		return nil, err
	}

	price := result.Price
	name := price.LongName
	if name == "" {
		name = price.ShortName
	}
	if name == "" && price.MarketCap.Raw == 0 {
		return nil, common.NotFoundf("ticker %s", ticker)
	}
	if name == "" {
		name = ticker
	}

	profile := &models.CompanyProfile{
		Ticker:    ticker,
		Name:      name,
		Sector:    result.AssetProfile.Sector,
		Industry:  result.AssetProfile.Industry,
		MarketCap: price.MarketCap.Raw,
		Revenue:   result.FinancialData.TotalRevenue.Raw / 1e6,
		Profit:    result.DefaultKeyStatistics.NetIncomeToCommon.Raw / 1e6,
	}

	return profile, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
