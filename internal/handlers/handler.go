package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/meetbhatt/portfolio-tracker/internal/ledger"
	"github.com/meetbhatt/portfolio-tracker/internal/portfolio"
	"github.com/meetbhatt/portfolio-tracker/internal/prices"
)

// Handler carries the collaborators every endpoint needs: the ledger
// store, the price snapshot fetcher and the configured cost-basis method.
type Handler struct {
	store   ledger.Store
	fetcher *prices.Fetcher
	method  portfolio.CostBasisMethod
	log     *logrus.Logger
}

func New(store ledger.Store, fetcher *prices.Fetcher, method portfolio.CostBasisMethod, log *logrus.Logger) *Handler {
	return &Handler{store: store, fetcher: fetcher, method: method, log: log}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
