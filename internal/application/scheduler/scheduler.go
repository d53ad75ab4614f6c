package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bryanwahyu/hydrolens/internal/application"
	domain "github.com/bryanwahyu/hydrolens/internal/domain/requests"
	"github.com/bryanwahyu/hydrolens/internal/middleware"
)

const (
	defaultInterval  = 5 * time.Minute
	defaultWorkers   = 2
	defaultBatchSize = 50
)

// Pipeline port ke eksekutor request
type Pipeline interface {
	Execute(ctx context.Context, id domain.RequestID) error
}

// Scheduler poll request QUEUED pada interval tetap dan serahkan ke worker
// pool terbatas. Satu request id tidak pernah dieksekusi dua kali bersamaan;
// request berbeda boleh paralel sampai batas Workers.
type Scheduler struct {
	Requests domain.Repository
	Pipeline Pipeline
	Clock    application.Clock
	Interval time.Duration
	Workers  int

	initOnce sync.Once
	sem      chan struct{}
	mu       sync.Mutex
	inflight map[domain.RequestID]bool
	wg       sync.WaitGroup
}

func (s *Scheduler) init() {
	s.initOnce.Do(func() {
		workers := s.Workers
		if workers <= 0 {
			workers = defaultWorkers
		}
		s.sem = make(chan struct{}, workers)
		s.inflight = make(map[domain.RequestID]bool)
	})
}

// Run loop poll sampai context dibatalkan, lalu tunggu eksekusi
// yang sedang jalan selesai
func (s *Scheduler) Run(ctx context.Context) {
	s.init()
	interval := s.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	log.Printf("scheduler started, polling every %s", interval)
	for ctx.Err() == nil {
		if err := s.Tick(ctx); err != nil {
			log.Printf("scheduler tick error: %v", err)
		}
		s.Clock.Sleep(interval)
	}
	log.Println("scheduler stopping, waiting for in-flight requests...")
	s.wg.Wait()
}

// Tick satu putaran poll + dispatch. Dipisah dari Run supaya test bisa
// mendorong tick secara deterministik.
func (s *Scheduler) Tick(ctx context.Context) error {
	s.init()
	queued, err := s.Requests.ListByStatus(ctx, domain.StatusQueued, defaultBatchSize)
	if err != nil {
		return err
	}
	for _, req := range queued {
		s.dispatch(req.ID)
	}
	return nil
}

func (s *Scheduler) dispatch(id domain.RequestID) {
	s.mu.Lock()
	if s.inflight[id] {
		s.mu.Unlock()
		return
	}
	s.inflight[id] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, id)
			s.mu.Unlock()
		}()

		s.sem <- struct{}{}
		defer func() { <-s.sem }()

		middleware.IncrementPipelineRuns()
		// context.Background() biar eksekusi jalan sampai selesai;
		// cancel request ditangani lewat status, bukan context
		if err := s.Pipeline.Execute(context.Background(), id); err != nil {
			middleware.IncrementPipelineFailed()
			log.Printf("request=%s execution error: %v", id, err)
		}
	}()
}

// Wait blok sampai semua eksekusi in-flight selesai (dipakai test/shutdown)
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
