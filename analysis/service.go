package analysis

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"

	"encore.dev/rlog"

	"encore.app/analysis/analyzer"
	"encore.app/analysis/business/coordinator"
	"encore.app/analysis/business/ratelimit"
	"encore.app/analysis/business/resultcache"
	"encore.app/analysis/business/tracker"
	"encore.app/analysis/store"
	"encore.app/analysis/worker"
	"encore.app/analysis/workflow"
)

var validate = validator.New()

const taskQueue = "image-analysis"

//encore:service
type Service struct {
	coordinator coordinator.Coordinator
	temporal    client.Client
	worker      sdkworker.Worker
	store       store.Store
}

func initService() (*Service, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr: envOr("REDIS_ADDR", "localhost:6379"),
	})
	kv, err := store.NewRedis(redisClient)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort: envOr("TEMPORAL_ADDR", client.DefaultHostPort),
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal: %w", err)
	}

	cache := resultcache.New(kv, 0)
	limiter := ratelimit.NewLimiter(kv, 0, 0)
	dispatcher := workflow.NewDispatcher(temporalClient, taskQueue)
	trk := tracker.New(kv, cache, dispatcher, 0)

	// The service hosts the worker alongside the API; additional worker
	// processes can join the same task queue independently.
	workflow.SetActivityDependencies(trk, analyzer.NewStub())
	w, err := worker.Start(temporalClient, taskQueue)
	if err != nil {
		return nil, fmt.Errorf("start worker: %w", err)
	}

	rlog.Info("analysis service initialized", "task_queue", taskQueue)

	return &Service{
		coordinator: coordinator.New(limiter, trk),
		temporal:    temporalClient,
		worker:      w,
		store:       kv,
	}, nil
}

func (s *Service) Shutdown(force context.Context) {
	s.worker.Stop()
	s.temporal.Close()
	if err := s.store.Close(); err != nil {
		rlog.Error("failed to close store", "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
