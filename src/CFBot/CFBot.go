package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/castforge/castforge/src/CFBot/bot"
	"github.com/castforge/castforge/src/CFBot/config"
	"github.com/castforge/castforge/src/CFBot/webserver"
	"github.com/castforge/castforge/src/shared/data"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "mysql"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "castforge:castforge@tcp(127.0.0.1:3306)/castforge"
	}
	db := data.MustDB(driver, dsn)

	if err := data.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cfg := config.Load(db)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = data.MustRedis(cfg.RedisURL)
	}

	b, err := bot.New(bot.Config{App: cfg, DB: db, Redis: rdb})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	if err := b.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	router := webserver.New(cfg, b.Pipeline(), db)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("CastForge webhook server listening on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)

	// In-flight pipeline tasks finish naturally; no rollback exists.
	b.Stop()
	log.Println("CastForge stopped gracefully")
}
