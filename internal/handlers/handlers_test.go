package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/meetbhatt/portfolio-tracker/internal/ledger"
	"github.com/meetbhatt/portfolio-tracker/internal/portfolio"
	"github.com/meetbhatt/portfolio-tracker/internal/prices"
)

type stubProvider struct {
	quotes map[string]float64
}

func (p *stubProvider) GetPrice(symbol string) (float64, time.Time, error) {
	price, ok := p.quotes[symbol]
	if !ok {
		return 0, time.Time{}, errors.New("no quote")
	}
	return price, time.Now(), nil
}

func newTestRouter(store ledger.Store, quotes map[string]float64, method portfolio.CostBasisMethod) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	fetcher := prices.NewFetcher(&stubProvider{quotes: quotes}, 2, time.Second, log)
	h := New(store, fetcher, method, log)

	router := gin.New()
	api := router.Group("/api")
	{
		api.POST("/trades", h.AddTrade)
		api.POST("/trades/batch", h.AddTradeBatch)
		api.GET("/trades", h.ListTrades)
		api.DELETE("/trades/:id", h.DeleteTrade)
		api.GET("/portfolio", h.GetPortfolio)
		api.GET("/portfolio/sectors", h.GetSectors)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddTrade_Success(t *testing.T) {
	store := ledger.NewMemoryStore()
	router := newTestRouter(store, nil, portfolio.AverageCost)

	w := doJSON(t, router, http.MethodPost, "/api/trades",
		`{"ticker":"aapl","side":"buy","trade_date":"2024-01-02","price":100,"quantity":10,"sector":"Technology","commission":5}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	records, _ := store.List()
	if len(records) != 1 {
		t.Fatalf("stored = %d, want 1", len(records))
	}
	if records[0].Ticker != "AAPL" {
		t.Errorf("ticker = %q, want normalized AAPL", records[0].Ticker)
	}
}

func TestAddTrade_RejectedNeverStored(t *testing.T) {
	store := ledger.NewMemoryStore()
	router := newTestRouter(store, nil, portfolio.AverageCost)

	cases := []string{
		`{"ticker":"aapl","side":"buy","trade_date":"2024-01-02","price":-5,"quantity":10}`,
		`{"ticker":"aapl","side":"hold","trade_date":"2024-01-02","price":5,"quantity":10}`,
		`{"ticker":"aapl","side":"buy","trade_date":"Jan 2","price":5,"quantity":10}`,
		`{"side":"buy","trade_date":"2024-01-02","price":5,"quantity":10}`,
	}
	for _, body := range cases {
		if w := doJSON(t, router, http.MethodPost, "/api/trades", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}

	if records, _ := store.List(); len(records) != 0 {
		t.Errorf("stored = %d, want 0 (rejects must never be half-stored)", len(records))
	}
}

func TestAddTradeBatch_MixedResults(t *testing.T) {
	store := ledger.NewMemoryStore()
	router := newTestRouter(store, nil, portfolio.AverageCost)

	w := doJSON(t, router, http.MethodPost, "/api/trades/batch", `[
        {"ticker":"aapl","side":"buy","trade_date":"2024-01-02","price":100,"quantity":10},
        {"ticker":"msft","side":"buy","trade_date":"2024-01-02","price":-1,"quantity":10},
        {"ticker":"xom","side":"buy","trade_date":"2024-01-02","price":50,"quantity":5}
    ]`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Accepted int `json:"accepted"`
		Rejected int `json:"rejected"`
		Results  []struct {
			Index  int    `json:"index"`
			Status string `json:"status"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Accepted != 2 || resp.Rejected != 1 {
		t.Errorf("accepted/rejected = %d/%d, want 2/1", resp.Accepted, resp.Rejected)
	}
	if resp.Results[1].Status != "rejected" {
		t.Errorf("results[1] = %+v, want rejected", resp.Results[1])
	}
	if records, _ := store.List(); len(records) != 2 {
		t.Errorf("stored = %d, want 2 (one bad record must not abort the batch)", len(records))
	}
}

func TestDeleteTrade_NotFound(t *testing.T) {
	router := newTestRouter(ledger.NewMemoryStore(), nil, portfolio.AverageCost)
	if w := doJSON(t, router, http.MethodDelete, "/api/trades/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

type portfolioResponse struct {
	CostBasis string `json:"cost_basis"`
	Positions []struct {
		Ticker         string   `json:"ticker"`
		TotalInvested  float64  `json:"total_invested"`
		MarketValue    *float64 `json:"market_value"`
		UnrealizedGain *float64 `json:"unrealized_gain"`
		RealizedGain   float64  `json:"realized_gain"`
		OverSell       bool     `json:"over_sell"`
	} `json:"positions"`
	Totals struct {
		TotalInvested float64 `json:"total_invested"`
		MarketValue   float64 `json:"market_value"`
		MissingPrices int     `json:"missing_prices"`
	} `json:"totals"`
}

func TestGetPortfolio(t *testing.T) {
	store := ledger.NewMemoryStore()
	router := newTestRouter(store, map[string]float64{"X": 30}, portfolio.FIFO)

	for _, body := range []string{
		`{"ticker":"X","side":"buy","trade_date":"2024-01-01","price":10,"quantity":10}`,
		`{"ticker":"X","side":"buy","trade_date":"2024-02-01","price":20,"quantity":10}`,
		`{"ticker":"X","side":"sell","trade_date":"2024-03-01","price":30,"quantity":15}`,
	} {
		if w := doJSON(t, router, http.MethodPost, "/api/trades", body); w.Code != http.StatusCreated {
			t.Fatalf("seed trade failed: %s", w.Body.String())
		}
	}

	w := doJSON(t, router, http.MethodGet, "/api/portfolio", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp portfolioResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.CostBasis != "fifo" {
		t.Errorf("cost basis = %q, want fifo", resp.CostBasis)
	}
	if len(resp.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(resp.Positions))
	}

	pos := resp.Positions[0]
	if pos.RealizedGain != 250 {
		t.Errorf("realized gain = %v, want 250", pos.RealizedGain)
	}
	// 5 remaining @30
	if pos.MarketValue == nil || *pos.MarketValue != 150 {
		t.Errorf("market value = %v, want 150", pos.MarketValue)
	}
}

func TestGetPortfolio_MissingPriceIsNull(t *testing.T) {
	store := ledger.NewMemoryStore()
	router := newTestRouter(store, nil, portfolio.AverageCost)

	doJSON(t, router, http.MethodPost, "/api/trades",
		`{"ticker":"Z","side":"buy","trade_date":"2024-01-01","price":50,"quantity":1}`)

	w := doJSON(t, router, http.MethodGet, "/api/portfolio", "")
	var resp portfolioResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if len(resp.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(resp.Positions))
	}
	pos := resp.Positions[0]
	if pos.MarketValue != nil || pos.UnrealizedGain != nil {
		t.Errorf("derived fields = %v/%v, want null for unpriced row", pos.MarketValue, pos.UnrealizedGain)
	}
	if pos.TotalInvested != 50 {
		t.Errorf("total invested = %v, want 50 (row still present)", pos.TotalInvested)
	}
	if resp.Totals.MissingPrices != 1 {
		t.Errorf("missing prices = %d, want 1", resp.Totals.MissingPrices)
	}
}

func TestGetSectors(t *testing.T) {
	store := ledger.NewMemoryStore()
	router := newTestRouter(store, map[string]float64{"AAPL": 110, "XOM": 45}, portfolio.AverageCost)

	doJSON(t, router, http.MethodPost, "/api/trades",
		`{"ticker":"AAPL","side":"buy","trade_date":"2024-01-01","price":100,"quantity":10,"sector":"Technology"}`)
	doJSON(t, router, http.MethodPost, "/api/trades",
		`{"ticker":"XOM","side":"buy","trade_date":"2024-01-01","price":50,"quantity":10,"sector":"Energy"}`)

	w := doJSON(t, router, http.MethodGet, "/api/portfolio/sectors", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Sectors []struct {
			Sector      string  `json:"sector"`
			GainPercent float64 `json:"gain_percent"`
		} `json:"sectors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Sectors) != 2 {
		t.Fatalf("sectors = %d, want 2", len(resp.Sectors))
	}
	// Ordered by gain percent descending: Technology (+10%) before Energy (-10%).
	if resp.Sectors[0].Sector != "Technology" || resp.Sectors[1].Sector != "Energy" {
		t.Errorf("order = [%s %s], want [Technology Energy]",
			resp.Sectors[0].Sector, resp.Sectors[1].Sector)
	}
}
