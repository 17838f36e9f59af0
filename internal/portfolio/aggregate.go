package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meetbhatt/portfolio-tracker/internal/models"
)

// PriceFunc answers the latest price for a ticker. The second return is
// false when no price could be obtained; the aggregator then degrades that
// position instead of failing the whole run.
type PriceFunc func(ticker string) (decimal.Decimal, bool)

// Position is the derived holding summary for one ticker. It is recomputed
// from the full ledger on every request and never mutated independently.
//
// MarketValue, UnrealizedGain and TotalGain are nil when the price lookup
// failed; a nil is reported as "price unavailable" rather than a zero that
// would understate P/L.
type Position struct {
	Ticker            string
	Sector            string
	TotalBought       decimal.Decimal
	TotalSold         decimal.Decimal
	RemainingQuantity decimal.Decimal
	AverageBuyPrice   decimal.Decimal
	TotalInvested     decimal.Decimal
	RealizedGain      decimal.Decimal
	CurrentPrice      *decimal.Decimal
	MarketValue       *decimal.Decimal
	UnrealizedGain    *decimal.Decimal
	TotalGain         *decimal.Decimal
	PortfolioPercent  decimal.Decimal

	// UnmatchedQuantity is the sold quantity that no recorded purchase
	// covers. Anything positive marks the position as an over-sell.
	UnmatchedQuantity decimal.Decimal
	OverSell          bool
	// NoOpenLots is set when the ticker has no Buy history at all, so no
	// cost basis can be established.
	NoOpenLots bool
}

// Totals are the portfolio-level sums across every ticker with at least one
// Buy. MarketValue and UnrealizedGain cover priced positions only;
// MissingPrices says how many positions were excluded from those two sums.
type Totals struct {
	TotalInvested  decimal.Decimal
	MarketValue    decimal.Decimal
	RealizedGain   decimal.Decimal
	UnrealizedGain decimal.Decimal
	TotalGain      decimal.Decimal
	Positions      int
	MissingPrices  int
}

// RejectedRecord reports one malformed ledger entry that was skipped.
type RejectedRecord struct {
	Record models.TradeRecord
	Reason string
}

// Result is the output of one aggregation run.
type Result struct {
	Positions []Position
	Totals    Totals
	Rejected  []RejectedRecord
}

var hundred = decimal.NewFromInt(100)

// Aggregate projects a flat ledger into one Position per ticker plus
// portfolio totals. It is a pure function of the records, the price
// snapshot behind priceOf, and the cost-basis method: same inputs, same
// output. No error is fatal to the run; the worst outcome for a single
// ticker is a partially populated, explicitly flagged row.
func Aggregate(records []models.TradeRecord, priceOf PriceFunc, method CostBasisMethod) Result {
	var res Result

	// Chronological order with ledger insertion order breaking date ties.
	// The incoming slice is left untouched.
	ordered := make([]models.TradeRecord, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			res.Rejected = append(res.Rejected, RejectedRecord{Record: rec, Reason: err.Error()})
			continue
		}
		ordered = append(ordered, rec)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TradeDate.Before(ordered[j].TradeDate)
	})

	byTicker := make(map[string][]models.TradeRecord)
	tickers := make([]string, 0)
	for _, rec := range ordered {
		if _, seen := byTicker[rec.Ticker]; !seen {
			tickers = append(tickers, rec.Ticker)
		}
		byTicker[rec.Ticker] = append(byTicker[rec.Ticker], rec)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		pos := buildPosition(ticker, byTicker[ticker], priceOf, method)
		res.Positions = append(res.Positions, pos)

		if pos.NoOpenLots {
			continue
		}
		res.Totals.Positions++
		res.Totals.TotalInvested = res.Totals.TotalInvested.Add(pos.TotalInvested)
		res.Totals.RealizedGain = res.Totals.RealizedGain.Add(pos.RealizedGain)
		if pos.MarketValue != nil {
			res.Totals.MarketValue = res.Totals.MarketValue.Add(*pos.MarketValue)
			res.Totals.UnrealizedGain = res.Totals.UnrealizedGain.Add(*pos.UnrealizedGain)
		} else {
			res.Totals.MissingPrices++
		}
	}
	res.Totals.TotalGain = res.Totals.RealizedGain.Add(res.Totals.UnrealizedGain)

	if res.Totals.TotalInvested.IsPositive() {
		for i := range res.Positions {
			if res.Positions[i].NoOpenLots {
				continue
			}
			res.Positions[i].PortfolioPercent = res.Positions[i].TotalInvested.
				Div(res.Totals.TotalInvested).Mul(hundred)
		}
	}
	return res
}

// buildPosition computes one ticker's projection from its chronologically
// ordered records.
func buildPosition(ticker string, recs []models.TradeRecord, priceOf PriceFunc, method CostBasisMethod) Position {
	pos := Position{Ticker: ticker, Sector: models.DefaultSector}

	for _, rec := range recs {
		switch rec.Side {
		case models.Buy:
			if pos.TotalBought.IsZero() && rec.Sector != "" {
				pos.Sector = rec.Sector
			}
			pos.TotalBought = pos.TotalBought.Add(rec.Quantity)
			pos.TotalInvested = pos.TotalInvested.
				Add(rec.Quantity.Mul(rec.Price)).
				Add(rec.Commission)
		case models.Sell:
			pos.TotalSold = pos.TotalSold.Add(rec.Quantity)
		}
	}
	pos.RemainingQuantity = pos.TotalBought.Sub(pos.TotalSold)
	pos.NoOpenLots = pos.TotalBought.IsZero()
	if !pos.NoOpenLots {
		pos.AverageBuyPrice = pos.TotalInvested.Div(pos.TotalBought)
	}

	switch method {
	case FIFO:
		pos.RealizedGain, pos.UnmatchedQuantity = fifoRealized(recs)
	default:
		pos.RealizedGain, pos.UnmatchedQuantity = averageRealized(recs, pos.AverageBuyPrice, pos.TotalBought)
	}
	pos.OverSell = pos.UnmatchedQuantity.IsPositive() || pos.RemainingQuantity.IsNegative()

	price, ok := priceOf(ticker)
	if !ok {
		return pos
	}
	pos.CurrentPrice = &price

	// An over-sold ticker holds nothing; valuing a negative quantity would
	// fabricate a short position the ledger never recorded.
	held := pos.RemainingQuantity
	if held.IsNegative() {
		held = decimal.Zero
	}
	mv := price.Mul(held)
	unrealized := mv.Sub(pos.AverageBuyPrice.Mul(held))
	total := pos.RealizedGain.Add(unrealized)
	pos.MarketValue = &mv
	pos.UnrealizedGain = &unrealized
	pos.TotalGain = &total
	return pos
}

// averageRealized books each Sell against the ticker-wide average buy
// price. Only the quantity actually covered by purchases contributes;
// the shortfall is returned, never priced.
func averageRealized(recs []models.TradeRecord, avg, totalBought decimal.Decimal) (realized, unmatched decimal.Decimal) {
	coverable := totalBought
	for _, rec := range recs {
		if rec.Side != models.Sell {
			continue
		}
		covered := rec.Quantity
		if covered.GreaterThan(coverable) {
			covered = coverable
		}
		realized = realized.Add(covered.Mul(rec.Price.Sub(avg)))
		coverable = coverable.Sub(covered)
		unmatched = unmatched.Add(rec.Quantity.Sub(covered))
	}
	return realized, unmatched
}

// fifoRealized replays the ticker's records in order, queueing Buy lots and
// consuming them oldest-first as Sells arrive. A Sell may span several lots;
// a Sell dated before any purchase finds an empty queue and its quantity
// counts as unmatched.
func fifoRealized(recs []models.TradeRecord) (realized, unmatched decimal.Decimal) {
	var queue lotQueue
	for _, rec := range recs {
		switch rec.Side {
		case models.Buy:
			queue.add(rec.Quantity, rec.Price)
		case models.Sell:
			pieces, miss := queue.consume(rec.Quantity)
			for _, p := range pieces {
				realized = realized.Add(p.quantity.Mul(rec.Price.Sub(p.price)))
			}
			unmatched = unmatched.Add(miss)
		}
	}
	return realized, unmatched
}
