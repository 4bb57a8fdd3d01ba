package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/freshmart/storefront/internal/catalog"
	"github.com/freshmart/storefront/internal/config"
	"github.com/freshmart/storefront/internal/events"
	"github.com/freshmart/storefront/internal/logging"
	"github.com/freshmart/storefront/internal/postgres"
	"github.com/freshmart/storefront/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// pagegen rebuilds the cached index page whenever the catalog changes, so the
// admin write path never waits on page regeneration.

type worker struct {
	cache *catalog.IndexCache
	rdb   *redis.Client
	log   *slog.Logger
	name  string
}

func (w *worker) handle(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventCatalogChanged {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, w.name, env.EventID)
	if seen, _ := redisx.Exists(ctx, w.rdb, dkey); seen {
		return nil
	}
	_ = w.rdb.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := events.UnwrapPayload[events.CatalogChangedPayload](env.Payload)
	if err != nil {
		return err
	}
	if _, err := w.cache.Rebuild(ctx); err != nil {
		return err
	}
	w.log.Info("index page rebuilt", "sku_id", p.SKUID, "change", p.Change)
	return nil
}

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

	w := &worker{
		cache: &catalog.IndexCache{RDB: rdb, Ledger: catalog.NewLedger(db)},
		rdb:   rdb,
		log:   log,
		name:  cfg.ServiceName + "-pagegen",
	}

	group := getenv("PAGEGEN_GROUP", "pagegen")
	workers := mustAtoi(os.Getenv("PAGEGEN_WORKERS"), "2")
	cons := events.NewConsumer(cfg.KafkaBrokers, group, events.TopicCatalogChanged, workers, log)

	go func() {
		log.Info("pagegen consumer started", "group", group, "topic", events.TopicCatalogChanged, "workers", workers)
		if err := cons.Start(ctx, w.handle); err != nil {
			log.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down consumer")
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
