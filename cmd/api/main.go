package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/meetbhatt/portfolio-tracker/internal/config"
	"github.com/meetbhatt/portfolio-tracker/internal/handlers"
	"github.com/meetbhatt/portfolio-tracker/internal/ledger"
	"github.com/meetbhatt/portfolio-tracker/internal/portfolio"
	"github.com/meetbhatt/portfolio-tracker/internal/prices"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load(log)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	method, err := portfolio.ParseCostBasisMethod(cfg.CostBasis)
	if err != nil {
		log.Fatal(err)
	}

	store, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to open ledger store: ", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	fetcher := prices.NewFetcher(prices.NewYahooProvider(), cfg.PriceWorkers, cfg.PriceTimeout, log)
	h := handlers.New(store, fetcher, method, log)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/trades", h.AddTrade)
		api.POST("/trades/batch", h.AddTradeBatch)
		api.GET("/trades", h.ListTrades)
		api.DELETE("/trades/:id", h.DeleteTrade)
		api.GET("/portfolio", h.GetPortfolio)
		api.GET("/portfolio/sectors", h.GetSectors)
	}

	router.GET("/ws/prices", h.StreamPrices)
	router.GET("/health", h.Health)

	// Serve frontend
	router.GET("/", func(c *gin.Context) {
		c.File("./public/index.html")
	})

	log.WithFields(logrus.Fields{
		"port":       cfg.Port,
		"backend":    cfg.LedgerBackend,
		"cost_basis": method.String(),
	}).Info("server starting")

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func openStore(cfg *config.Config, log *logrus.Logger) (ledger.Store, error) {
	switch cfg.LedgerBackend {
	case "postgres":
		return ledger.OpenPostgres(ledger.PostgresConfig{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Name:     cfg.DBName,
		})
	case "csv":
		return ledger.NewCSVStore(cfg.CSVDir)
	case "memory":
		log.Warn("using in-memory ledger, trades are lost on restart")
		return ledger.NewMemoryStore(), nil
	default:
		log.Warnf("unknown LEDGER_BACKEND %q, falling back to memory", cfg.LedgerBackend)
		return ledger.NewMemoryStore(), nil
	}
}
