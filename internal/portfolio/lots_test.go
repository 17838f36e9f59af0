package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLotQueue_PartialConsumption(t *testing.T) {
	var q lotQueue
	q.add(dec("10"), dec("10"))
	q.add(dec("10"), dec("20"))

	pieces, unmatched := q.consume(dec("15"))

	if !unmatched.IsZero() {
		t.Errorf("unmatched = %s, want 0", unmatched)
	}
	if len(pieces) != 2 {
		t.Fatalf("pieces = %d, want 2", len(pieces))
	}
	if !pieces[0].quantity.Equal(dec("10")) || !pieces[0].price.Equal(dec("10")) {
		t.Errorf("first piece = %s@%s, want 10@10", pieces[0].quantity, pieces[0].price)
	}
	if !pieces[1].quantity.Equal(dec("5")) || !pieces[1].price.Equal(dec("20")) {
		t.Errorf("second piece = %s@%s, want 5@20", pieces[1].quantity, pieces[1].price)
	}

	// Consumed pieces add up to the requested quantity.
	var sum decimal.Decimal
	for _, p := range pieces {
		sum = sum.Add(p.quantity)
	}
	if !sum.Equal(dec("15")) {
		t.Errorf("piece sum = %s, want 15", sum)
	}

	// Second lot keeps its remainder at the head.
	open := q.open()
	if len(open) != 1 {
		t.Fatalf("open lots = %d, want 1", len(open))
	}
	if !open[0].quantity.Equal(dec("5")) || !open[0].price.Equal(dec("20")) {
		t.Errorf("remaining lot = %s@%s, want 5@20", open[0].quantity, open[0].price)
	}
}

func TestLotQueue_ShortfallReportedNotFabricated(t *testing.T) {
	var q lotQueue
	q.add(dec("5"), dec("10"))

	pieces, unmatched := q.consume(dec("8"))

	if !unmatched.Equal(dec("3")) {
		t.Errorf("unmatched = %s, want 3", unmatched)
	}
	if len(pieces) != 1 || !pieces[0].quantity.Equal(dec("5")) {
		t.Fatalf("pieces = %+v, want single 5@10 piece", pieces)
	}
	if len(q.open()) != 0 {
		t.Errorf("open lots = %d, want 0 (no negative lot invented)", len(q.open()))
	}
}

func TestLotQueue_FractionalQuantities(t *testing.T) {
	var q lotQueue
	q.add(dec("0.5"), dec("100"))
	q.add(dec("0.25"), dec("200"))

	pieces, unmatched := q.consume(dec("0.6"))

	if !unmatched.IsZero() {
		t.Errorf("unmatched = %s, want 0", unmatched)
	}
	if len(pieces) != 2 {
		t.Fatalf("pieces = %d, want 2", len(pieces))
	}
	if !pieces[1].quantity.Equal(dec("0.1")) {
		t.Errorf("second piece quantity = %s, want 0.1", pieces[1].quantity)
	}
	if !q.open()[0].quantity.Equal(dec("0.15")) {
		t.Errorf("remaining = %s, want 0.15", q.open()[0].quantity)
	}
}

func TestLotQueue_ConsumeEmpty(t *testing.T) {
	var q lotQueue
	pieces, unmatched := q.consume(dec("4"))
	if len(pieces) != 0 {
		t.Errorf("pieces = %d, want 0", len(pieces))
	}
	if !unmatched.Equal(dec("4")) {
		t.Errorf("unmatched = %s, want 4", unmatched)
	}
}
