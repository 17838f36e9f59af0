package prices

import (
	"errors"
	"time"
)

// ErrPriceNotFound is returned when the source has no quote for a symbol.
var ErrPriceNotFound = errors.New("price not found")

// Provider returns the latest price for a symbol in its quote currency.
// A provider may be slow and may fail; callers treat a failure as "price
// unavailable" for that symbol, never as a fatal condition.
type Provider interface {
	GetPrice(symbol string) (price float64, asOf time.Time, err error)
}
