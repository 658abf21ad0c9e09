package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"campushub/internal/activity"
	"campushub/internal/config"
	"campushub/internal/queue"
	"campushub/internal/store"
)

// Worker drains engine events off the queue into the activity log.
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

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "campushub:events")
	}

	repo := activity.NewRepository(db.Client)

	events, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for events...")
	for evt := range events {
		if err := repo.Record(ctx, evt); err != nil {
			log.Printf("record event %s (%s) failed: %v", evt.ID, evt.Type, err)
			continue
		}
		log.Printf("logged event %s (%s)", evt.ID, evt.Type)
	}

	log.Println("worker stopped")
}
