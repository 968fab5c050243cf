package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xoned-commerce/internal/auth"
	"xoned-commerce/internal/config"
	"xoned-commerce/internal/db"
	"xoned-commerce/internal/httpserver"
	capsulerepo "xoned-commerce/internal/repository/capsule"
	"xoned-commerce/internal/repository/kv"
	orderrepo "xoned-commerce/internal/repository/order"
	productrepo "xoned-commerce/internal/repository/product"
	sessionrepo "xoned-commerce/internal/repository/session"
	capsulesvc "xoned-commerce/internal/service/capsule"
	cartsvc "xoned-commerce/internal/service/cart"
	"xoned-commerce/internal/service/dashboard"
	ordersvc "xoned-commerce/internal/service/order"
	productsvc "xoned-commerce/internal/service/product"
	sessionsvc "xoned-commerce/internal/service/session"
	wishlistsvc "xoned-commerce/internal/service/wishlist"
)

const sessionPurgeInterval = time.Hour

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		logger.Printf("JWT_SECRET is empty; all bearer tokens will be rejected")
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		if dbpool == nil {
			logger.Fatalf("connect to db: %v", err)
		}
		logger.Printf("db unreachable, serving degraded: %v", err)
	}
	defer dbpool.Close()

	calc := cfg.Pricing()
	storage := kv.NewPostgres(dbpool)

	capsuleRepo := capsulerepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	capsuleService := capsulesvc.New(capsuleRepo)
	productService := productsvc.New(productRepo, capsuleRepo)
	cartService := cartsvc.New(storage, productService, calc, logger)
	wishlistService := wishlistsvc.New(storage, productService, logger)
	sessionService := sessionsvc.New(sessionrepo.NewPostgres(dbpool), cfg.SessionTTL, logger, cartService, wishlistService)
	orderService := ordersvc.New(orderRepo, cartService, productService, calc, ordersvc.SimulatedGateway{Delay: 2 * time.Second}, cfg.Currency, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions:  sessionService,
		Verifier:  auth.NewVerifier(cfg.JWTSecret),
		Products:  productService,
		Capsules:  capsuleService,
		Cart:      cartService,
		Wishlist:  wishlistService,
		Orders:    orderService,
		Dashboard: dashboard.New(orderRepo, productService, capsuleService),
	}, httpserver.Options{CORSAllowedOrigins: cfg.CORSAllowedOrigins})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go purgeSessions(purgeCtx, sessionService, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}
	stopPurge()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func purgeSessions(ctx context.Context, sessions *sessionsvc.Service, logger *log.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Printf("session purge failed: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("session purge removed=%d", n)
			}
		}
	}
}
