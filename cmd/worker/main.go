package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendhub/internal/config"
	"attendhub/internal/queue"
	"attendhub/internal/submit"
)

// Worker drains the retry queue: each queued submission is re-POSTed to the
// attendance endpoint, and payloads that still fail go back on the queue.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := queue.NewRedis(cfg.RedisAddr)

	var retry queue.Queue
	if cfg.QueueBackend == "memory" {
		retry = queue.NewInMemory(64)
	} else {
		retry = queue.NewRedisQueue(redisClient.Client, cfg.RetryQueueKey)
	}

	if cfg.SubmitURL == "" {
		log.Fatal("SUBMIT_URL required: the worker has nowhere to deliver queued submissions")
	}
	submitter := submit.New(cfg.SubmitURL, cfg.SubmitTimeout, retry)
	defer submitter.Close()

	messages, err := retry.Consume(ctx)
	if err != nil {
		log.Fatalf("retry queue consume init failed: %v", err)
	}

	log.Println("retry worker started, draining queued submissions...")
	for msg := range messages {
		if msg.Type != submit.MessageType {
			continue
		}

		var payload submit.Payload
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			log.Printf("dropping malformed queued payload: %v", err)
			continue
		}

		outcome := submitter.Submit(ctx, payload)
		log.Printf("retried submission for %s: %s", payload.UserID, outcome)

		if outcome == submit.Queued {
			// Endpoint still down; back off before touching the next payload
			// so we do not spin on a hot failing queue.
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
			}
		}
	}

	log.Println("retry worker stopped")
}
