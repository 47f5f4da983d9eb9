package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"classtrack/internal/attendance"
	"classtrack/internal/config"
	"classtrack/internal/daytime"
	"classtrack/internal/queue"
	"classtrack/internal/schedule"
	"classtrack/internal/store"
	"classtrack/internal/user"
)

// Worker consumes cancellation events and notifies the affected cohort.
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

	db, err := store.NewDB(cfg.DatabaseURL, store.Pool{
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisPoolSize)

	var events queue.Queue
	if cfg.QueueBackend == "memory" {
		events = queue.NewInMemory(64)
	} else {
		events = queue.NewRedisQueue(redisClient.Client, "classtrack:cancellations")
	}

	slots := schedule.NewRepository(db.Client)
	users := user.NewRepository(db.Client)

	messages, err := events.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for cancellation events...")
	for msg := range messages {
		if msg.Type != "class_cancelled" {
			continue
		}

		var evt attendance.CancellationEvent
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.Printf("bad event payload: %v", err)
			continue
		}

		entry, err := slots.ByID(ctx, evt.SlotID)
		if err != nil {
			// The slot may have been deleted after cancellation; nothing to
			// notify.
			log.Printf("slot %s lookup failed: %v", evt.SlotID, err)
			continue
		}

		cohort, err := users.StudentsByCohort(ctx, entry.Subject.Department, entry.Subject.Semester)
		if err != nil {
			log.Printf("cohort lookup for %s/%s failed: %v", entry.Subject.Department, entry.Subject.Semester, err)
			continue
		}

		window := daytime.Decode(entry.StartMinute) + "-" + daytime.Decode(entry.EndMinute)
		for _, st := range cohort {
			log.Printf("notify %s <%s>: %s (%s %s on %s) cancelled: %s",
				st.Name, st.Email, entry.Subject.Name, entry.Day, window, evt.Date, evt.Reason)
		}
		log.Printf("event %s_%s processed, %d students notified", evt.SlotID, evt.Date, len(cohort))
	}

	log.Println("worker stopped")
}
