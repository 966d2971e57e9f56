package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus is the latest liveness snapshot of external dependencies.
type HealthStatus struct {
	Healthy   bool      `json:"healthy"`
	Mongo     bool      `json:"mongo"`
	Redis     []bool    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth = HealthStatus{Healthy: true}
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor checks Redis and Mongo once immediately and then every
// minute, updating the in-memory snapshot served by /health.
func StartHealthMonitor(redisClients []*redis.Client, mongoClient *mongo.Client) {
	check := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		status := HealthStatus{Healthy: true, CheckedAt: time.Now()}
		for _, client := range redisClients {
			ok := client.Ping(ctx).Err() == nil
			status.Redis = append(status.Redis, ok)
			status.Healthy = status.Healthy && ok
		}
		status.Mongo = mongoClient.Ping(ctx, nil) == nil
		status.Healthy = status.Healthy && status.Mongo

		healthMu.Lock()
		currentHealth = status
		healthMu.Unlock()
	}

	go func() {
		check()
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			check()
		}
	}()
}
