package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/smokerelay/smokerelay/internal/api/http/handler"
	httprouter "github.com/smokerelay/smokerelay/internal/api/http/router"
	"github.com/smokerelay/smokerelay/internal/config"
	"github.com/smokerelay/smokerelay/internal/logger"
	"github.com/smokerelay/smokerelay/internal/messenger"
	"github.com/smokerelay/smokerelay/internal/model"
	"github.com/smokerelay/smokerelay/internal/registry"
	"github.com/smokerelay/smokerelay/internal/repository"
	"github.com/smokerelay/smokerelay/internal/server"
	"github.com/smokerelay/smokerelay/internal/service"
	"github.com/smokerelay/smokerelay/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	store, closeStore, err := repository.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize config store", "error", err)
	}
	defer closeStore()

	reg := registry.New(store, logger)

	sender := messenger.NewClient(messenger.Options{
		BaseURL:     cfg.Page.GraphBaseURL,
		PageID:      cfg.Page.ID,
		AccessToken: cfg.Page.AccessToken,
	}, reg, logger)

	subscriptionService := service.NewSubscription(reg, sender, cfg.Page.VerificationToken, logger)
	alertService := service.NewAlert(reg, sender, logger)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	webhookHandler := handler.NewWebhook(subscriptionService, cfg.Page.VerificationToken, logger)
	alertHandler := handler.NewAlert(alertService, logger)

	r := httprouter.New(webhookHandler, alertHandler, tokenManager, logger)
	httpServer := server.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
