package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side marks a trade record as a purchase or a sale.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ParseSide parses a user supplied side string.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown trade side: %q", s)
	}
}

// TradeDateLayout is the day-precision layout used everywhere a trade date
// crosses a serialization boundary (API, CSV, database).
const TradeDateLayout = "2006-01-02"

// DefaultSector is assigned to Buy records that arrive without a sector label.
const DefaultSector = "Other"

// TradeRecord is one ledger entry. The ledger is the system of record;
// positions are always recomputed from it and never stored.
type TradeRecord struct {
	ID         string          `json:"id"`
	Ticker     string          `json:"ticker"`
	TradeDate  time.Time       `json:"trade_date"`
	Side       Side            `json:"side"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
	Sector     string          `json:"sector,omitempty"`
	Commission decimal.Decimal `json:"commission"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Validate normalizes the record in place and reports the first rule it
// breaks. A record that fails validation must never reach a ledger store.
func (t *TradeRecord) Validate() error {
	t.Ticker = strings.ToUpper(strings.TrimSpace(t.Ticker))
	if t.Ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	if t.Side != Buy && t.Side != Sell {
		return fmt.Errorf("side must be %s or %s, got %q", Buy, Sell, t.Side)
	}
	if t.TradeDate.IsZero() {
		return fmt.Errorf("trade date is required")
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("price must be positive, got %s", t.Price)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be positive, got %s", t.Quantity)
	}
	if t.Commission.IsNegative() {
		return fmt.Errorf("commission cannot be negative, got %s", t.Commission)
	}
	t.Sector = strings.TrimSpace(t.Sector)
	if t.Sector == "" && t.Side == Buy {
		t.Sector = DefaultSector
	}
	return nil
}

// TradeRequest - what the client sends to record a trade
type TradeRequest struct {
	Ticker     string  `json:"ticker" binding:"required"`
	Side       string  `json:"side" binding:"required"`
	TradeDate  string  `json:"trade_date" binding:"required"`
	Price      float64 `json:"price" binding:"required,gt=0"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	Sector     string  `json:"sector"`
	Commission float64 `json:"commission" binding:"gte=0"`
}

// ToRecord converts the request into an unvalidated TradeRecord.
func (r TradeRequest) ToRecord(now time.Time) (TradeRecord, error) {
	side, err := ParseSide(r.Side)
	if err != nil {
		return TradeRecord{}, err
	}
	day, err := time.Parse(TradeDateLayout, r.TradeDate)
	if err != nil {
		return TradeRecord{}, fmt.Errorf("trade date must be %s: %w", TradeDateLayout, err)
	}
	return TradeRecord{
		Ticker:     r.Ticker,
		TradeDate:  day,
		Side:       side,
		Price:      decimal.NewFromFloat(r.Price),
		Quantity:   decimal.NewFromFloat(r.Quantity),
		Sector:     r.Sector,
		Commission: decimal.NewFromFloat(r.Commission),
		CreatedAt:  now,
	}, nil
}
