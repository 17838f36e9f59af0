package portfolio

import "fmt"

// CostBasisMethod selects how realized gains are matched against purchases.
// One method is chosen per deployment and applied uniformly; mixing methods
// across requests would make realized figures incomparable.
type CostBasisMethod int

const (
	// AverageCost spreads the cost of every purchase evenly across all shares.
	AverageCost CostBasisMethod = iota
	// FIFO matches each sold share against the oldest unsold purchase lot.
	FIFO
)

func (m CostBasisMethod) String() string {
	switch m {
	case AverageCost:
		return "average"
	case FIFO:
		return "fifo"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses a configuration value into a CostBasisMethod.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch s {
	case "average", "":
		return AverageCost, nil
	case "fifo":
		return FIFO, nil
	default:
		return 0, fmt.Errorf("unknown cost basis method: %q", s)
	}
}
