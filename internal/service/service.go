// Package service implements the run lifecycle: starting runs, driving the
// pipeline in the background and answering result and stream queries.
package service

import (
	"context"
	"sync"

	"github.com/xiaot623/agentflow/internal/config"
	"github.com/xiaot623/agentflow/internal/pipeline"
	"github.com/xiaot623/agentflow/internal/repository"
	"github.com/xiaot623/agentflow/internal/runs"
)

type Service struct {
	store    store.Store
	registry *runs.Registry
	executor *pipeline.Executor
	metrics  *Metrics
	config   *config.Config

	workers sync.WaitGroup
}

func New(store store.Store, registry *runs.Registry, executor *pipeline.Executor, metrics *Metrics, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		registry: registry,
		executor: executor,
		metrics:  metrics,
		config:   cfg,
	}
}

// Shutdown waits for in-flight runs to finish or ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
