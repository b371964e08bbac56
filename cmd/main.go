package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "susurros/internal/http"
	"susurros/internal/notify"
	"susurros/internal/repository"
	"susurros/internal/service"
	"susurros/pkg/config"
	"susurros/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "susurros",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	db, err := repository.Open(cfg.DBPath)
	if err != nil {
		log.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	products := repository.NewGormProducts(db)
	customers := repository.NewGormCustomers(db)
	orders := repository.NewGormOrders(db)
	tx := repository.NewGormTx(db)

	var sender notify.Sender = notify.NopSender{}
	if cfg.SMTPHost != "" {
		sender = notify.NewSMTPSender(notify.SMTPSettings{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			From:       cfg.SMTPFrom,
			AdminEmail: cfg.AdminEmail,
		})
	}

	stockSvc := service.NewStockService(products, log)
	orderSvc := service.NewOrderService(products, customers, orders, tx, sender, log)

	// seed the standard catalog and reconcile drifted prices at boot
	ctx := context.Background()
	if err := stockSvc.InitializeProducts(ctx); err != nil {
		log.Error("initialize products", "error", err)
		os.Exit(1)
	}
	if updated, err := stockSvc.SyncPrices(ctx); err != nil {
		log.Error("sync prices", "error", err)
		os.Exit(1)
	} else if updated {
		log.Info("catalog prices synced to canonical table")
	}

	srv := httpapi.NewServer(orderSvc, stockSvc, httpapi.Config{
		AdminPassword: cfg.AdminPassword,
		SessionSecret: cfg.SessionSecret,
	}, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: srv.Engine(),
	}

	go func() {
		log.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
