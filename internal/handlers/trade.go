package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meetbhatt/portfolio-tracker/internal/ledger"
	"github.com/meetbhatt/portfolio-tracker/internal/models"
)

// AddTrade handles POST /api/trades
func (h *Handler) AddTrade(c *gin.Context) {
	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := req.ToRecord(time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Rejected records are never stored, not even partially.
	if err := rec.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.store.Append(rec)
	if err != nil {
		h.log.WithError(err).Error("failed to append trade")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record trade"})
		return
	}

	h.log.WithFields(map[string]interface{}{
		"ticker": stored.Ticker,
		"side":   stored.Side,
	}).Info("trade recorded")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Trade recorded successfully",
		"trade":   stored,
	})
}

// batchItemResult reports the outcome for one record of a batch.
type batchItemResult struct {
	Index  int    `json:"index"`
	Status string `json:"status"` // "accepted" | "rejected"
	Reason string `json:"reason,omitempty"`
	ID     string `json:"id,omitempty"`
}

// AddTradeBatch handles POST /api/trades/batch. A malformed record is
// rejected on its own and never aborts the rest of the batch.
func (h *Handler) AddTradeBatch(c *gin.Context) {
	var reqs []models.TradeRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	results := make([]batchItemResult, 0, len(reqs))
	accepted := 0
	for i, req := range reqs {
		rec, err := req.ToRecord(now)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			results = append(results, batchItemResult{Index: i, Status: "rejected", Reason: err.Error()})
			continue
		}
		stored, err := h.store.Append(rec)
		if err != nil {
			h.log.WithError(err).Error("failed to append trade in batch")
			results = append(results, batchItemResult{Index: i, Status: "rejected", Reason: "storage failure"})
			continue
		}
		accepted++
		results = append(results, batchItemResult{Index: i, Status: "accepted", ID: stored.ID})
	}

	c.JSON(http.StatusOK, gin.H{
		"accepted": accepted,
		"rejected": len(reqs) - accepted,
		"results":  results,
	})
}

// ListTrades handles GET /api/trades
func (h *Handler) ListTrades(c *gin.Context) {
	records, err := h.store.List()
	if err != nil {
		h.log.WithError(err).Error("failed to list trades")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trades"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trades": records,
		"count":  len(records),
	})
}

// DeleteTrade handles DELETE /api/trades/:id
func (h *Handler) DeleteTrade(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trade not found"})
			return
		}
		h.log.WithError(err).Error("failed to delete trade")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trade"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trade deleted"})
}
