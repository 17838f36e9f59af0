package prices

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Quote is one symbol's price at a point in time.
type Quote struct {
	Price decimal.Decimal
	AsOf  time.Time
}

// Snapshot is the set of quotes collected for one aggregation run. Symbols
// whose lookup failed or timed out are simply absent.
type Snapshot struct {
	quotes map[string]Quote
}

// PriceOf reports the snapshot price for a ticker. It is the lookup
// function handed to the aggregator, so aggregation itself never blocks on
// the network.
func (s *Snapshot) PriceOf(ticker string) (decimal.Decimal, bool) {
	q, ok := s.quotes[ticker]
	return q.Price, ok
}

// Quote returns the full quote for a ticker.
func (s *Snapshot) Quote(ticker string) (Quote, bool) {
	q, ok := s.quotes[ticker]
	return q, ok
}

// Len returns the number of symbols the snapshot holds a price for.
func (s *Snapshot) Len() int { return len(s.quotes) }

// Fetcher resolves a batch of symbols against a Provider using a bounded
// worker pool. Lookups for different symbols are independent, so issuing
// them concurrently is purely a latency optimization.
type Fetcher struct {
	provider Provider
	workers  int
	budget   time.Duration
	log      *logrus.Logger
}

func NewFetcher(provider Provider, workers int, budget time.Duration, log *logrus.Logger) *Fetcher {
	if workers < 1 {
		workers = 1
	}
	if budget <= 0 {
		budget = 5 * time.Second
	}
	return &Fetcher{provider: provider, workers: workers, budget: budget, log: log}
}

type fetchResult struct {
	symbol string
	quote  Quote
	ok     bool
}

// Fetch collects quotes for every symbol, at most one lookup per symbol.
// A lookup that errors or blows its budget leaves a hole in the snapshot
// rather than failing the batch.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string) *Snapshot {
	snap := &Snapshot{quotes: make(map[string]Quote, len(symbols))}
	if len(symbols) == 0 {
		return snap
	}

	jobs := make(chan string)
	results := make(chan fetchResult, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				results <- f.lookup(ctx, symbol)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, s := range symbols {
			select {
			case jobs <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.ok {
			snap.quotes[res.symbol] = res.quote
		}
	}
	return snap
}

// lookup runs one provider call under the per-lookup budget. The provider
// has no context hook, so the call runs in its own goroutine and is
// abandoned on timeout; its buffered channel lets it finish quietly.
func (f *Fetcher) lookup(ctx context.Context, symbol string) fetchResult {
	done := make(chan fetchResult, 1)
	go func() {
		price, asOf, err := f.provider.GetPrice(symbol)
		if err != nil {
			if f.log != nil {
				f.log.WithFields(logrus.Fields{"symbol": symbol, "error": err}).Warn("price lookup failed")
			}
			done <- fetchResult{symbol: symbol}
			return
		}
		done <- fetchResult{
			symbol: symbol,
			quote:  Quote{Price: decimal.NewFromFloat(price), AsOf: asOf},
			ok:     true,
		}
	}()

	select {
	case res := <-done:
		return res
	case <-time.After(f.budget):
		if f.log != nil {
			f.log.WithField("symbol", symbol).Warn("price lookup exceeded budget")
		}
		return fetchResult{symbol: symbol}
	case <-ctx.Done():
		return fetchResult{symbol: symbol}
	}
}
