package prices

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// YahooProvider quotes symbols from the Yahoo Finance v8 chart endpoint.
// Responses are cached for a short TTL so one dashboard refresh does not
// hammer the API once per position.
type YahooProvider struct {
	cli *http.Client
	ttl time.Duration

	mu    sync.RWMutex
	cache map[string]yahooQuote
}

type yahooQuote struct {
	price   float64
	asOf    time.Time
	fetched time.Time
}

func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		cli:   &http.Client{Timeout: 8 * time.Second},
		ttl:   60 * time.Second,
		cache: make(map[string]yahooQuote),
	}
}

func (p *YahooProvider) GetPrice(symbol string) (float64, time.Time, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, time.Time{}, ErrPriceNotFound
	}

	p.mu.RLock()
	if q, ok := p.cache[symbol]; ok && time.Since(q.fetched) < p.ttl {
		p.mu.RUnlock()
		return q.price, q.asOf, nil
	}
	p.mu.RUnlock()

	url := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=1d", symbol)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, time.Time{}, err
	}
	req.Header.Set("User-Agent", "portfolio-tracker/1.0")

	resp, err := p.cli.Do(req)
	if err != nil {
		return 0, time.Time{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, time.Time{}, fmt.Errorf("yahoo returned http %d for %s", resp.StatusCode, symbol)
	}

	var raw struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					RegularMarketTime  int64   `json:"regularMarketTime"`
				} `json:"meta"`
			} `json:"result"`
			Error *struct {
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return 0, time.Time{}, fmt.Errorf("decode yahoo response: %w", err)
	}
	if raw.Chart.Error != nil {
		return 0, time.Time{}, fmt.Errorf("yahoo: %s", raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 || raw.Chart.Result[0].Meta.RegularMarketPrice <= 0 {
		return 0, time.Time{}, ErrPriceNotFound
	}

	meta := raw.Chart.Result[0].Meta
	asOf := time.Unix(meta.RegularMarketTime, 0)
	if meta.RegularMarketTime == 0 {
		asOf = time.Now()
	}

	p.mu.Lock()
	p.cache[symbol] = yahooQuote{price: meta.RegularMarketPrice, asOf: asOf, fetched: time.Now()}
	p.mu.Unlock()

	return meta.RegularMarketPrice, asOf, nil
}
