package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// PriceUpdate is one quote pushed over the websocket.
type PriceUpdate struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	AsOf      time.Time `json:"as_of"`
	Timestamp time.Time `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (for development and demo)
	},
}

// StreamPrices handles GET /ws/prices. It pushes fresh quotes for every
// ticker currently in the ledger on a fixed interval until the client goes
// away. A ticker whose lookup fails is skipped for that round, not for the
// life of the connection.
func (h *Handler) StreamPrices(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.log.Info("client connected to price stream")

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		records, err := h.store.List()
		if err != nil {
			h.log.WithError(err).Error("price stream: failed to load ledger")
			return
		}

		tickers := distinctTickers(records)
		snap := h.fetcher.Fetch(ctx, tickers)
		now := time.Now()
		for _, symbol := range tickers {
			quote, ok := snap.Quote(symbol)
			if !ok {
				continue
			}
			update := PriceUpdate{
				Symbol:    symbol,
				Price:     quote.Price.InexactFloat64(),
				AsOf:      quote.AsOf,
				Timestamp: now,
			}
			if err := conn.WriteJSON(update); err != nil {
				h.log.WithError(err).Info("client left price stream")
				return
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
