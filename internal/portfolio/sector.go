package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SectorSummary aggregates the positions of one sector.
type SectorSummary struct {
	Sector         string
	TotalInvested  decimal.Decimal
	MarketValue    decimal.Decimal
	RealizedGain   decimal.Decimal
	UnrealizedGain decimal.Decimal
	// GainPercent is realized plus unrealized gain over invested capital.
	GainPercent decimal.Decimal
	// AllocationPercent is the sector's share of total invested capital.
	AllocationPercent decimal.Decimal
	// MissingPrices counts positions whose market value could not be
	// established; they are absent from MarketValue and UnrealizedGain.
	MissingPrices int
}

// SectorBreakdown groups positions by sector, ordered by gain percent
// descending. Anomaly rows without any Buy history carry no capital and are
// skipped.
func SectorBreakdown(positions []Position) []SectorSummary {
	bySector := make(map[string]*SectorSummary)
	var totalInvested decimal.Decimal

	for _, pos := range positions {
		if pos.NoOpenLots {
			continue
		}
		s := bySector[pos.Sector]
		if s == nil {
			s = &SectorSummary{Sector: pos.Sector}
			bySector[pos.Sector] = s
		}
		s.TotalInvested = s.TotalInvested.Add(pos.TotalInvested)
		s.RealizedGain = s.RealizedGain.Add(pos.RealizedGain)
		if pos.MarketValue != nil {
			s.MarketValue = s.MarketValue.Add(*pos.MarketValue)
			s.UnrealizedGain = s.UnrealizedGain.Add(*pos.UnrealizedGain)
		} else {
			s.MissingPrices++
		}
		totalInvested = totalInvested.Add(pos.TotalInvested)
	}

	out := make([]SectorSummary, 0, len(bySector))
	for _, s := range bySector {
		gain := s.RealizedGain.Add(s.UnrealizedGain)
		if s.TotalInvested.IsPositive() {
			s.GainPercent = gain.Div(s.TotalInvested).Mul(hundred)
		}
		if totalInvested.IsPositive() {
			s.AllocationPercent = s.TotalInvested.Div(totalInvested).Mul(hundred)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GainPercent.Equal(out[j].GainPercent) {
			return out[i].GainPercent.GreaterThan(out[j].GainPercent)
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}
