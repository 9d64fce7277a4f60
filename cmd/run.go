package cmd

import (
	"context"
	"fmt"
	"time"

	"lotto/config"
	"lotto/database"
	"lotto/events"
	"lotto/httpapi"
	"lotto/repository"
	"lotto/scheduler"
	"lotto/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	accountService := service.NewAccountService(uowFactory)
	ledgerService := service.NewLedgerService(uowFactory)
	bettingService := service.NewBettingService(uowFactory)
	drawService := service.NewDrawService(uowFactory)
	claimService := service.NewClaimService(uowFactory)

	httpapi.RegisterWinnerNotifier(eventBus, httpapi.LogNotifier{})

	sched := scheduler.New(drawService, loc)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	server := httpapi.NewServer(accountService, ledgerService, bettingService, drawService, claimService)

	log.WithFields(log.Fields{
		"addr":        cfg.HTTPAddr,
		"environment": cfg.Environment,
	}).Info("Server running")

	err = server.Start(ctx, cfg.HTTPAddr)

	log.Info("Shutting down...")
	sched.Stop()
	db.Close()

	// Give async event handlers a moment to drain
	time.Sleep(time.Second)

	return err
}
