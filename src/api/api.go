package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/satoshisafe/safesync/src/api/config"
	"github.com/satoshisafe/safesync/src/api/data"
	"github.com/satoshisafe/safesync/src/api/webserver"
	"github.com/satoshisafe/safesync/src/docstore"
	"github.com/satoshisafe/safesync/src/reconcile"
	"github.com/satoshisafe/safesync/src/safeclient"
	"github.com/satoshisafe/safesync/src/scheduler"
)

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	if err := data.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	rdb := data.MustRedis(cfg.RedisURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docs, err := docstore.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("docstore: %v", err)
	}
	defer func() { _ = docs.Disconnect(context.Background()) }()
	if err := docs.EnsureIndexes(ctx); err != nil {
		log.Printf("Failed to ensure indexes: %v", err)
	}

	registry := safeclient.NewRegistry()
	if err := data.LoadNetworks(db, registry); err != nil {
		log.Printf("Failed to load networks: %v", err)
	}

	engine := reconcile.NewEngine(registry, docs, reconcile.Config{
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxPages,
		Notify: func(teamID int64, safe string) {
			_ = data.PublishFeedEvent(ctx, rdb, map[string]interface{}{
				"team": teamID,
				"kind": "transactions",
				"safe": safe,
				"time": time.Now().Unix(),
			})
		},
	})

	sched := scheduler.New(scheduler.Config{
		Interval:     time.Duration(cfg.PollInterval) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		CatchUpGrace: time.Duration(cfg.CatchUpGrace) * time.Second,
	}, func(ctx context.Context) {
		// Networks and safes can change between cycles; reload the registry
		// so new registrations are picked up without a restart.
		if err := data.LoadNetworks(db, registry); err != nil {
			log.Printf("reload networks: %v", err)
		}
		safes, err := data.ListRegisteredSafes(db)
		if err != nil {
			log.Printf("list safes: %v", err)
			return
		}
		engine.Run(ctx, safes)
	})
	go sched.Run(ctx)

	router := webserver.New(cfg, db, docs, rdb, engine, sched)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("SafeSync API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
