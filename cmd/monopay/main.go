package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/wellywell/monopay/internal/config"
	"github.com/wellywell/monopay/internal/db"
	"github.com/wellywell/monopay/internal/handlers"
	"github.com/wellywell/monopay/internal/mono"
	"github.com/wellywell/monopay/internal/order"
	"github.com/wellywell/monopay/internal/reconcile"
	"github.com/wellywell/monopay/internal/router"
	"github.com/wellywell/monopay/internal/signature"
	"github.com/wellywell/monopay/internal/store"
	"github.com/wellywell/monopay/internal/types"
)

func main() {
	if err := run(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func run() error {
	conf, err := config.NewConfig()
	if err != nil {
		return err
	}

	logger.SetFormatter(&logger.JSONFormatter{})
	level, err := logger.ParseLevel(conf.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var orders store.Store
	if conf.DatabaseDSN != "" {
		database, err := db.NewDatabase(conf.DatabaseDSN)
		if err != nil {
			return err
		}
		defer database.Close()
		orders = database
	} else {
		logger.Warning("DATABASE_URI not set, orders are kept in memory")
		orders = store.NewMemoryStore()
	}

	if conf.MonoToken == "" {
		logger.Warning("MONO_TOKEN not set, processor calls will fail")
	}
	client := mono.NewClient(conf.MonoAPIBase, conf.MonoToken, conf.MonoTimeout)

	service := reconcile.NewService(orders, client, signature.NewVerifier(conf.WebhookSecret), reconcile.Options{
		Currency:    conf.Currency,
		WebhookURL:  conf.WebhookURL,
		RedirectURL: conf.RedirectURL,
	})

	if conf.RefreshInterval > 0 {
		order.Run(ctx, orders, service, types.NewStatusSet(conf.FinalStatuses), conf.RefreshInterval)
	}

	handlerSet := handlers.NewHandlerSet(service, conf.BaseURL,
		handlers.AdminCredentials{Login: conf.AdminLogin, PasswordHash: conf.AdminPasswordHash},
		[]byte(conf.Secret), conf.AuthCookieExpiresIn)

	r := router.NewRouter(conf, handlerSet, router.RequestLogger{})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Shutdown failed: %s", err)
		}
	}()

	logger.Infof("listening on %s", conf.RunAddress)
	return r.ListenAndServe()
}
