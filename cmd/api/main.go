package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"attendhub/internal/config"
	"attendhub/internal/geo"
	"attendhub/internal/queue"
	"attendhub/internal/seed"
	"attendhub/internal/store"
	"attendhub/internal/submit"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	redisClient := queue.NewRedis(cfg.RedisAddr)

	var retry queue.Queue
	if cfg.QueueBackend == "memory" {
		retry = queue.NewInMemory(64)
	} else {
		retry = queue.NewRedisQueue(redisClient.Client, cfg.RetryQueueKey)
	}

	st := store.New()
	if cfg.Seed {
		data := seed.Generate(time.Now(), int64(cfg.SeedRand))
		st.Load(data.Members, data.Attendance, data.Leaves)
		log.Printf("seeded demo data: %d members, %d attendance records, %d leave requests",
			len(data.Members), len(data.Attendance), len(data.Leaves))
	}

	submitter := submit.New(cfg.SubmitURL, cfg.SubmitTimeout, retry)
	defer submitter.Close()
	if cfg.SubmitURL == "" {
		log.Println("SUBMIT_URL not set, attendance submissions go straight to the retry queue")
	}

	resolver := geo.NewResolver(cfg.GeoProviderURL, cfg.GeoTimeout)

	// Base context for fire-and-forget submissions; cancelled at shutdown so
	// no in-flight delivery outlives the process teardown.
	baseCtx, cancelTasks := context.WithCancel(context.Background())
	defer cancelTasks()

	s := &server{
		cfg:       cfg,
		store:     st,
		retry:     retry,
		redis:     redisClient,
		submitter: submitter,
		resolver:  resolver,
		baseCtx:   baseCtx,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      s.router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancelTasks()

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
