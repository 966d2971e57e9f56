package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"salonbot/config"
	"salonbot/services/popular"

	"github.com/hibiken/asynq"
)

const TypePopularWarm = "popular:warm"

type warmPayload struct {
	SalonIDs []string `json:"salonIds"`
}

// InitWarmCacheWorker runs the async worker and the periodic scheduler that
// refreshes the popularity cache for the configured salons.
func InitWarmCacheWorker(popularSvc popular.PopularTimesService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePopularWarm, handleWarmTask(popularSvc))

	go func() {
		log.Println("[PopularWarm] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PopularWarm] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Println("[PopularWarm] max retry attempts reached; cache warming disabled")
					return
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go runWarmScheduler(redisOpts)
}

// runWarmScheduler enqueues a warm task every 30 minutes for the salons
// listed in config. Scheduler failures only cost freshness.
func runWarmScheduler(redisOpts asynq.RedisClientOpt) {
	salons := config.AppConfig.WarmCacheSalons
	if len(salons) == 0 {
		log.Println("[PopularWarm] no salons configured; scheduler idle")
		return
	}

	payload, err := json.Marshal(warmPayload{SalonIDs: salons})
	if err != nil {
		log.Printf("[PopularWarm] failed to marshal payload: %v", err)
		return
	}

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register("@every 30m", asynq.NewTask(TypePopularWarm, payload)); err != nil {
		log.Printf("[PopularWarm] failed to register schedule: %v", err)
		return
	}
	if err := scheduler.Run(); err != nil {
		log.Printf("[PopularWarm] scheduler stopped: %v", err)
	}
}

func handleWarmTask(popularSvc popular.PopularTimesService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p warmPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[PopularWarm] invalid payload: %v", err)
			return err
		}

		log.Printf("[PopularWarm] warming popularity cache for %d salon(s)", len(p.SalonIDs))
		if err := popularSvc.WarmCache(ctx, p.SalonIDs); err != nil {
			log.Printf("[PopularWarm] warm failed: %v", err)
			return err
		}
		return nil
	}
}
