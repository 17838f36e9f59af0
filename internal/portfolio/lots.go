package portfolio

import "github.com/shopspring/decimal"

// lot is the unsold remainder of a single Buy record, tracked for FIFO
// cost-basis matching. Price is the per-share purchase price.
type lot struct {
	quantity decimal.Decimal
	price    decimal.Decimal
}

// lotPiece is the slice of a lot consumed by one Sell.
type lotPiece struct {
	quantity decimal.Decimal
	price    decimal.Decimal
}

// lotQueue holds a ticker's open lots in strict purchase order.
type lotQueue struct {
	lots []lot
}

func (q *lotQueue) add(quantity, price decimal.Decimal) {
	q.lots = append(q.lots, lot{quantity: quantity, price: price})
}

// open returns the lots that still hold unsold quantity.
func (q *lotQueue) open() []lot {
	return q.lots
}

// consume takes quantity out of the queue oldest-lot-first and returns the
// pieces taken, one per lot touched. Partial consumption leaves the lot at
// the head with its remainder; a lot never goes negative. If the queue runs
// out first, the shortfall is returned as unmatched instead of fabricating a
// negative lot.
func (q *lotQueue) consume(quantity decimal.Decimal) (pieces []lotPiece, unmatched decimal.Decimal) {
	remaining := quantity
	for len(q.lots) > 0 && remaining.IsPositive() {
		head := &q.lots[0]
		if head.quantity.GreaterThan(remaining) {
			pieces = append(pieces, lotPiece{quantity: remaining, price: head.price})
			head.quantity = head.quantity.Sub(remaining)
			return pieces, decimal.Zero
		}
		pieces = append(pieces, lotPiece{quantity: head.quantity, price: head.price})
		remaining = remaining.Sub(head.quantity)
		q.lots = q.lots[1:]
	}
	return pieces, remaining
}
