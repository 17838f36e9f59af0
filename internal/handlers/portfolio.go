package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/meetbhatt/portfolio-tracker/internal/models"
	"github.com/meetbhatt/portfolio-tracker/internal/portfolio"
)

// positionView is the JSON shape of one position row. Nullable fields stay
// pointers so a missing price serializes as null, not as a misleading zero.
type positionView struct {
	Ticker            string   `json:"ticker"`
	Sector            string   `json:"sector"`
	TotalBought       float64  `json:"total_bought"`
	TotalSold         float64  `json:"total_sold"`
	RemainingQuantity float64  `json:"remaining_quantity"`
	AverageBuyPrice   float64  `json:"average_buy_price"`
	TotalInvested     float64  `json:"total_invested"`
	RealizedGain      float64  `json:"realized_gain"`
	CurrentPrice      *float64 `json:"current_price"`
	MarketValue       *float64 `json:"market_value"`
	UnrealizedGain    *float64 `json:"unrealized_gain"`
	TotalGain         *float64 `json:"total_gain"`
	PortfolioPercent  float64  `json:"portfolio_percent"`
	UnmatchedQuantity float64  `json:"unmatched_quantity,omitempty"`
	OverSell          bool     `json:"over_sell,omitempty"`
	NoOpenLots        bool     `json:"no_open_lots,omitempty"`
}

type totalsView struct {
	TotalInvested  float64 `json:"total_invested"`
	MarketValue    float64 `json:"market_value"`
	RealizedGain   float64 `json:"realized_gain"`
	UnrealizedGain float64 `json:"unrealized_gain"`
	TotalGain      float64 `json:"total_gain"`
	Positions      int     `json:"positions"`
	MissingPrices  int     `json:"missing_prices,omitempty"`
}

type rejectedView struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

type sectorView struct {
	Sector            string  `json:"sector"`
	TotalInvested     float64 `json:"total_invested"`
	MarketValue       float64 `json:"market_value"`
	RealizedGain      float64 `json:"realized_gain"`
	UnrealizedGain    float64 `json:"unrealized_gain"`
	GainPercent       float64 `json:"gain_percent"`
	AllocationPercent float64 `json:"allocation_percent"`
	MissingPrices     int     `json:"missing_prices,omitempty"`
}

// GetPortfolio handles GET /api/portfolio
func (h *Handler) GetPortfolio(c *gin.Context) {
	result, ok := h.aggregate(c)
	if !ok {
		return
	}

	positions := make([]positionView, 0, len(result.Positions))
	for _, pos := range result.Positions {
		positions = append(positions, toPositionView(pos))
	}
	rejected := make([]rejectedView, 0, len(result.Rejected))
	for _, r := range result.Rejected {
		rejected = append(rejected, rejectedView{Ticker: r.Record.Ticker, Reason: r.Reason})
	}

	c.JSON(http.StatusOK, gin.H{
		"cost_basis": h.method.String(),
		"positions":  positions,
		"totals": totalsView{
			TotalInvested:  dec(result.Totals.TotalInvested),
			MarketValue:    dec(result.Totals.MarketValue),
			RealizedGain:   dec(result.Totals.RealizedGain),
			UnrealizedGain: dec(result.Totals.UnrealizedGain),
			TotalGain:      dec(result.Totals.TotalGain),
			Positions:      result.Totals.Positions,
			MissingPrices:  result.Totals.MissingPrices,
		},
		"rejected": rejected,
	})
}

// GetSectors handles GET /api/portfolio/sectors
func (h *Handler) GetSectors(c *gin.Context) {
	result, ok := h.aggregate(c)
	if !ok {
		return
	}

	sectors := make([]sectorView, 0)
	for _, s := range portfolio.SectorBreakdown(result.Positions) {
		sectors = append(sectors, sectorView{
			Sector:            s.Sector,
			TotalInvested:     dec(s.TotalInvested),
			MarketValue:       dec(s.MarketValue),
			RealizedGain:      dec(s.RealizedGain),
			UnrealizedGain:    dec(s.UnrealizedGain),
			GainPercent:       dec(s.GainPercent),
			AllocationPercent: dec(s.AllocationPercent),
			MissingPrices:     s.MissingPrices,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sectors": sectors})
}

// aggregate loads the ledger, snapshots prices for its distinct tickers and
// runs the projection. Returns ok=false after writing an error response.
func (h *Handler) aggregate(c *gin.Context) (portfolio.Result, bool) {
	records, err := h.store.List()
	if err != nil {
		h.log.WithError(err).Error("failed to load ledger")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ledger"})
		return portfolio.Result{}, false
	}

	snap := h.fetcher.Fetch(c.Request.Context(), distinctTickers(records))
	return portfolio.Aggregate(records, snap.PriceOf, h.method), true
}

func distinctTickers(records []models.TradeRecord) []string {
	seen := make(map[string]bool, len(records))
	var tickers []string
	for _, rec := range records {
		if !seen[rec.Ticker] {
			seen[rec.Ticker] = true
			tickers = append(tickers, rec.Ticker)
		}
	}
	return tickers
}

func dec(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func decPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func toPositionView(pos portfolio.Position) positionView {
	return positionView{
		Ticker:            pos.Ticker,
		Sector:            pos.Sector,
		TotalBought:       dec(pos.TotalBought),
		TotalSold:         dec(pos.TotalSold),
		RemainingQuantity: dec(pos.RemainingQuantity),
		AverageBuyPrice:   dec(pos.AverageBuyPrice),
		TotalInvested:     dec(pos.TotalInvested),
		RealizedGain:      dec(pos.RealizedGain),
		CurrentPrice:      decPtr(pos.CurrentPrice),
		MarketValue:       decPtr(pos.MarketValue),
		UnrealizedGain:    decPtr(pos.UnrealizedGain),
		TotalGain:         decPtr(pos.TotalGain),
		PortfolioPercent:  dec(pos.PortfolioPercent),
		UnmatchedQuantity: dec(pos.UnmatchedQuantity),
		OverSell:          pos.OverSell,
		NoOpenLots:        pos.NoOpenLots,
	}
}
