// Package di wires repositories, clients and services together.
package di

import (
	"github.com/aristath/lookout/internal/clientdata"
	"github.com/aristath/lookout/internal/clients/alphavantage"
	"github.com/aristath/lookout/internal/config"
	"github.com/aristath/lookout/internal/modules/portfolio"
	"github.com/aristath/lookout/internal/modules/risk"
	"github.com/aristath/lookout/internal/services"
	"github.com/rs/zerolog"
)

// Container holds the constructed service graph
type Container struct {
	Databases *Databases

	InstrumentRepo *portfolio.InstrumentRepository
	TradeRepo      *portfolio.TradeRepository
	CacheRepo      *clientdata.Repository

	MarketDataClient    *alphavantage.Client
	PriceHistoryService *services.PriceHistoryService

	PortfolioService *portfolio.Service
	RiskService      *risk.Service

	CacheCleanupJob *clientdata.CleanupJob
}

// New builds the full service graph from configuration
func New(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	databases, err := InitializeDatabases(cfg.DataDir, log)
	if err != nil {
		return nil, err
	}

	instrumentRepo := portfolio.NewInstrumentRepository(databases.Portfolio, log)
	tradeRepo := portfolio.NewTradeRepository(databases.Portfolio, log)
	cacheRepo := clientdata.NewRepository(databases.Cache)

	marketDataClient := alphavantage.NewClient(cfg.AlphaVantageAPIKey, log)
	priceHistoryService := services.NewPriceHistoryService(
		marketDataClient,
		cacheRepo,
		cfg.PriceCacheTTL,
		log,
	)

	portfolioService := portfolio.NewService(instrumentRepo, tradeRepo, log)
	riskService := risk.NewService(
		&holdingsAdapter{service: portfolioService},
		&priceHistoryAdapter{service: priceHistoryService},
		cfg.RiskLookbackDays,
		log,
	)

	return &Container{
		Databases:           databases,
		InstrumentRepo:      instrumentRepo,
		TradeRepo:           tradeRepo,
		CacheRepo:           cacheRepo,
		MarketDataClient:    marketDataClient,
		PriceHistoryService: priceHistoryService,
		PortfolioService:    portfolioService,
		RiskService:         riskService,
		CacheCleanupJob:     clientdata.NewCleanupJob(cacheRepo, log),
	}, nil
}

// Close releases everything the container owns
func (c *Container) Close() error {
	return c.Databases.Close()
}
