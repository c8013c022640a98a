package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dnldd/swing/shared"
	"github.com/tidwall/gjson"
)

const (
	// BaseURL is the default FMP api base url.
	BaseURL = "https://financialmodelingprep.com/stable"
	// dailyHistoricalPath is the end of day candles path.
	dailyHistoricalPath = "/historical-price-eod/full"
)

// CandleFetcher defines the requirements for fetching daily candles.
type CandleFetcher interface {
	// FetchDailyHistorical fetches daily candles for the provided symbol and date range.
	FetchDailyHistorical(ctx context.Context, symbol string, from time.Time, to time.Time) ([]shared.Candle, error)
}

// FMPConfig represents the configuration for the FMP client.
type FMPConfig struct {
	// APIkey is the FMP API Key.
	APIKey string
	// BaseURL is the FMP api base url.
	BaseURL string
	// Timeout is the request timeout, five seconds when zero.
	Timeout time.Duration
}

// FMPClient represents the Financial Modeling Preparation (FMP) API client.
type FMPClient struct {
	cfg   *FMPConfig
	httpc http.Client
	buf   *bytes.Buffer
	mtx   sync.Mutex
}

// Ensure the FMPClient implements the CandleFetcher interface.
var _ CandleFetcher = (*FMPClient)(nil)

// NewFMPClient instantiates a new FMP client.
func NewFMPClient(cfg *FMPConfig) (*FMPClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("fmp api key cannot be an empty string")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second * 5
	}

	return &FMPClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: cfg.Timeout},
		buf:   bytes.NewBuffer(make([]byte, 0, 512)),
	}, nil
}

// formURL creates full urls including paramters for the api.
func (c *FMPClient) formURL(path string, params string) string {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.buf.WriteString(c.cfg.BaseURL)
	c.buf.WriteString(path)
	c.buf.WriteString("?")
	c.buf.WriteString(params)
	url := c.buf.String()
	c.buf.Reset()

	return url
}

// ParseDailyCandles parses daily candles from the provided FMP response body. Both the bare
// array and the legacy {"historical": [...]} shapes are accepted.
func ParseDailyCandles(body []byte) ([]shared.Candle, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid fmp response payload")
	}

	root := gjson.ParseBytes(body)
	switch {
	case root.IsArray():
		return shared.ParseCandleResults(root.Array())
	case root.Get("historical").IsArray():
		return shared.ParseCandleResults(root.Get("historical").Array())
	case root.Get("Error Message").Exists():
		return nil, fmt.Errorf("fmp error: %s", root.Get("Error Message").String())
	default:
		return nil, fmt.Errorf("unexpected fmp response shape: %s", root.Type.String())
	}
}

// FetchDailyHistorical fetches end of day candles for the provided symbol. A zero end time
// fetches up to the latest session.
func (c *FMPClient) FetchDailyHistorical(ctx context.Context, symbol string, from time.Time, to time.Time) ([]shared.Candle, error) {
	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("apikey", c.cfg.APIKey)
	params.Add("from", from.Format(shared.DateLayout))
	if !to.IsZero() {
		params.Add("to", to.Format(shared.DateLayout))
	}

	formedURL := c.formURL(dailyHistoricalPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating daily historical request for %s: %w", symbol, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching daily historical data for %s: %w", symbol, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching daily historical data for %s: unexpected status %d",
			symbol, resp.StatusCode)
	}

	candles, err := ParseDailyCandles(body)
	if err != nil {
		return nil, fmt.Errorf("parsing daily historical data for %s: %w", symbol, err)
	}

	return shared.NormalizeCandles(candles), nil
}
