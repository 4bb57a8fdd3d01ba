package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freshmart/storefront/internal/address"
	"github.com/freshmart/storefront/internal/cart"
	"github.com/freshmart/storefront/internal/catalog"
	"github.com/freshmart/storefront/internal/checkout"
	"github.com/freshmart/storefront/internal/config"
	"github.com/freshmart/storefront/internal/events"
	"github.com/freshmart/storefront/internal/httpx"
	"github.com/freshmart/storefront/internal/logging"
	"github.com/freshmart/storefront/internal/orders"
	"github.com/freshmart/storefront/internal/payment"
	"github.com/freshmart/storefront/internal/postgres"
	"github.com/freshmart/storefront/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	orderProd := events.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024)
	orderProd.Start(ctx)
	catalogProd := events.NewProducer(cfg.KafkaBrokers, events.TopicCatalogChanged, 256)
	catalogProd.Start(ctx)

	ledger := catalog.NewLedger(db)
	indexCache := &catalog.IndexCache{RDB: rdb, Ledger: ledger}
	cartStore := &cart.Store{RDB: rdb, Stock: ledger}
	orderRepo := &orders.Repo{DB: db}

	checkoutSvc := &checkout.Service{
		Cart:      cartStore,
		Addresses: &address.Repo{DB: db},
		Repo:      &checkout.Repo{DB: db},
		Producer:  orderProd,
		Service:   cfg.ServiceName,
		Log:       log,
	}
	confirmer := &payment.Confirmer{
		Orders:   orderRepo,
		Provider: payment.NewGatewayClient(cfg.PaymentGatewayURL),
	}

	router := httpx.NewRouter(log)
	(&httpx.CartHandler{Cart: cartStore}).Register(router)
	(&httpx.CheckoutHandler{Svc: checkoutSvc}).Register(router)
	(&httpx.OrdersHandler{Repo: orderRepo, Confirmer: confirmer}).Register(router)
	(&httpx.CatalogHandler{
		Ledger: ledger,
		Cache:  indexCache,
		Admin: &catalog.Admin{
			DB: db, Cache: indexCache, Producer: catalogProd,
			Service: cfg.ServiceName, Log: log,
		},
	}).Register(router)
	(&httpx.AddressHandler{Repo: &address.Repo{DB: db}}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	orderProd.Close()
	catalogProd.Close()
	orderProd.WaitClosed()
	catalogProd.WaitClosed()
}
