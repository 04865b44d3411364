package scheduler_adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger_adapter "homiio/internal/adapters/logger"
	"homiio/internal/contextkeys"
	"homiio/internal/core/port"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// JobFunc - периодическая задача. Возвращает число обработанных записей.
type JobFunc func(ctx context.Context, now time.Time) (int, error)

type Job struct {
	Name string
	Spec string // стандартный cron из 5 полей, UTC
	Run  JobFunc
}

// scheduledJob - задача, уже обернутая цепочкой Recover и SkipIfStillRunning.
// Ее же вызывает и запуск при старте, поэтому он не пересекается с тиком cron.
type scheduledJob struct {
	Job
	run cron.Job
}

// Scheduler запускает фоновые задачи по расписанию.
// Одна и та же задача не выполняется параллельно сама с собой.
type Scheduler struct {
	cron   *cron.Cron
	chain  cron.Chain
	logger port.LoggerPort
	jobs   []scheduledJob

	mu      sync.Mutex
	startWG sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	now     func() time.Time
}

func New(logger port.LoggerPort) *Scheduler {
	schedLogger := logger.WithFields(port.Fields{"component": "Scheduler"})
	cronLogger := logger_adapter.NewPkgLoggerBridge(schedLogger)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		chain:  cron.NewChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		logger: schedLogger,
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}
}

func (s *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("scheduler: job %q has no function", job.Name)
	}
	wrapped := s.chain.Then(cron.FuncJob(func() { s.runJob(job) }))
	if _, err := s.cron.AddJob(job.Spec, wrapped); err != nil {
		return fmt.Errorf("scheduler: invalid spec %q for job %q: %w", job.Spec, job.Name, err)
	}
	s.mu.Lock()
	s.jobs = append(s.jobs, scheduledJob{Job: job, run: wrapped})
	s.mu.Unlock()
	return nil
}

// Start запускает расписание. При runOnStart все задачи выполняются сразу один раз.
func (s *Scheduler) Start(runOnStart bool) {
	s.cron.Start()
	s.logger.Info("Scheduler started.", port.Fields{"jobs": len(s.jobs)})
	if !runOnStart {
		return
	}
	s.mu.Lock()
	jobs := append([]scheduledJob(nil), s.jobs...)
	s.mu.Unlock()
	for _, job := range jobs {
		s.startWG.Add(1)
		go func(j cron.Job) {
			defer s.startWG.Done()
			j.Run()
		}(job.run)
	}
}

func (s *Scheduler) runJob(job Job) {
	traceID := uuid.New().String()
	jobLogger := s.logger.WithFields(port.Fields{"job": job.Name, "trace_id": traceID})

	ctx := contextkeys.ContextWithTraceID(s.ctx, traceID)
	ctx = contextkeys.ContextWithLogger(ctx, jobLogger)

	started := s.now()
	n, err := job.Run(ctx, started.UTC())
	if err != nil {
		jobLogger.Error("Scheduled job failed", err, port.Fields{"duration": time.Since(started).String()})
		return
	}
	jobLogger.Info("Scheduled job finished.", port.Fields{"processed": n, "duration": time.Since(started).String()})
}

// Stop останавливает расписание и ждет текущие задачи, включая запуски
// при старте, но не дольше ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.startWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.cancel()
		s.logger.Info("Scheduler stopped.", nil)
		return nil
	case <-ctx.Done():
		s.cancel()
		return fmt.Errorf("scheduler: jobs did not finish in time: %w", ctx.Err())
	}
}
