package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/services/analytics-jobs/internal/logic"
	"linkhub/services/analytics-jobs/internal/svc"
)

const (
	retryJobName     = "dead-letter-retry"
	partitionJobName = "partition-maintenance"
)

// Scheduler runs the periodic jobs. It implements service.Service.
type Scheduler struct {
	s        gocron.Scheduler
	done     chan struct{}
	stopOnce sync.Once
}

// New registers the dead-letter retry job and the partition maintenance
// job. Both run in singleton mode: a tick that fires while the previous run
// is still going is skipped. Partition maintenance also runs at start-up.
func New(svcCtx *svc.ServiceContext) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(logger{}),
	)
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(svcCtx.Config.Retry.Interval),
		gocron.NewTask(func(ctx context.Context) {
			_, _ = logic.NewRetryDeadLettersLogic(ctx, svcCtx).RetryDeadLetters()
		}),
		gocron.WithName(retryJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.CronJob(svcCtx.Config.Partition.Schedule, false),
		gocron.NewTask(func(ctx context.Context) {
			logic.NewMaintainPartitionsLogic(ctx, svcCtx).MaintainPartitions()
		}),
		gocron.WithName(partitionJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, err
	}

	return &Scheduler{s: s, done: make(chan struct{})}, nil
}

// Start runs the jobs and blocks until Stop is called.
func (s *Scheduler) Start() {
	s.s.Start()
	logx.Infow("scheduler started", logx.Field("jobs", len(s.s.Jobs())))
	<-s.done
}

// Stop waits for running jobs, then stops the scheduler.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if err := s.s.Shutdown(); err != nil {
			logx.Errorw("scheduler shutdown failed", logx.Field("error", err.Error()))
		}
		close(s.done)
	})
}

// logger adapts gocron logging to logx.
type logger struct{}

func (logger) Debug(msg string, args ...any) { logx.Debugw(msg, fields(args)...) }
func (logger) Info(msg string, args ...any)  { logx.Infow(msg, fields(args)...) }
func (logger) Warn(msg string, args ...any)  { logx.Infow(msg, fields(args)...) }
func (logger) Error(msg string, args ...any) { logx.Errorw(msg, fields(args)...) }

func fields(args []any) []logx.LogField {
	out := make([]logx.LogField, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		out = append(out, logx.Field(key, args[i+1]))
	}
	return out
}
