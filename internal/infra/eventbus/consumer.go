package eventbus

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"linkhub/internal/shared/events"
)

const defaultHandlerMaxBackoff = 30 * time.Second

// MessageReader is the subset of *kafka.Reader used by a worker.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Stats() kafka.ReaderStats
	Close() error
}

// Delivery is a decoded message handed to a BatchHandler.
type Delivery struct {
	Event      events.ClickEvent
	RetryCount int
	Message    kafka.Message
}

// BatchHandler processes one batch to completion. Per-event failures are
// the handler's business; a returned error means the batch could not be
// processed at all. The same batch is then handed over again until it
// succeeds, and nothing after it is committed meanwhile.
type BatchHandler interface {
	HandleBatch(ctx context.Context, batch []Delivery) error
}

// ConsumerMetrics receives the consumer's transport-level observations.
type ConsumerMetrics interface {
	IncPoison()
	SetLag(worker string, lag int64)
}

// BatchConf configures the worker pool and batching.
type BatchConf struct {
	Workers   int           `json:",default=3"`
	BatchSize int           `json:",default=100"`
	BatchWait time.Duration `json:",default=1s"`
	Retry     RetryConf
	// HandlerMaxBackoff caps the wait between attempts of a failing batch.
	HandlerMaxBackoff time.Duration `json:",default=30s"`
}

// BatchConsumer runs one worker per reader. Each worker fetches a batch,
// hands it to the handler and commits it before fetching the next one.
type BatchConsumer struct {
	readers []MessageReader
	handler BatchHandler
	conf    BatchConf
	metrics ConsumerMetrics

	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
	done    chan struct{}
}

// NewBatchConsumer creates a BatchConsumer. metrics may be nil.
func NewBatchConsumer(readers []MessageReader, handler BatchHandler, c BatchConf, metrics ConsumerMetrics) *BatchConsumer {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &BatchConsumer{
		readers: readers,
		handler: handler,
		conf:    c,
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start runs the workers and blocks until Stop is called.
func (c *BatchConsumer) Start() {
	c.started.Store(true)
	defer close(c.done)

	logx.Infow("batch consumer started",
		logx.Field("workers", len(c.readers)),
		logx.Field("batch_size", c.conf.BatchSize),
	)
	if err := c.Run(c.ctx); err != nil && !errors.Is(err, context.Canceled) {
		logx.Errorw("batch consumer stopped", logx.Field("error", err.Error()))
	}
}

// Stop lets in-flight batches finish, then closes the readers.
func (c *BatchConsumer) Stop() {
	c.cancel()
	if c.started.Load() {
		<-c.done
	}
	for _, r := range c.readers {
		if err := r.Close(); err != nil {
			logx.Errorw("failed to close reader", logx.Field("error", err.Error()))
		}
	}
	logx.Info("batch consumer stopped")
}

// Run blocks until ctx is done or a reader is closed.
func (c *BatchConsumer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, r := range c.readers {
		worker := strconv.Itoa(i)
		g.Go(func() error {
			return c.work(ctx, worker, r)
		})
	}
	return g.Wait()
}

func (c *BatchConsumer) work(ctx context.Context, worker string, r MessageReader) error {
	for {
		msgs, err := c.fetchBatch(ctx, r)
		if len(msgs) > 0 {
			if perr := c.process(ctx, r, msgs); perr != nil {
				// Shutdown while the batch kept failing; it stays uncommitted.
				return perr
			}
		}
		c.metrics.SetLag(worker, r.Stats().Lag)

		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, io.EOF):
			return err
		default:
			logx.WithContext(ctx).Errorw("fetch failed after retries, will fetch again",
				logx.Field("worker", worker),
				logx.Field("error", err.Error()),
			)
		}
	}
}

// fetchBatch returns up to BatchSize messages. It blocks for the first
// message, then collects more until BatchWait has elapsed.
func (c *BatchConsumer) fetchBatch(ctx context.Context, r MessageReader) ([]kafka.Message, error) {
	batch := make([]kafka.Message, 0, c.conf.BatchSize)
	fetchCtx := ctx
	cancel := context.CancelFunc(func() {})
	defer func() { cancel() }()

	for len(batch) < c.conf.BatchSize {
		msg, err := c.fetch(fetchCtx, r)
		if err != nil {
			if len(batch) > 0 && ctx.Err() == nil && fetchCtx.Err() != nil {
				return batch, nil
			}
			return batch, err
		}

		batch = append(batch, msg)
		if len(batch) == 1 {
			fetchCtx, cancel = context.WithTimeout(ctx, c.conf.BatchWait)
		}
	}

	return batch, nil
}

func (c *BatchConsumer) fetch(ctx context.Context, r MessageReader) (kafka.Message, error) {
	var msg kafka.Message
	err := Retry(ctx, c.conf.Retry, "fetch", func() error {
		var err error
		msg, err = r.FetchMessage(ctx)
		if err != nil && (ctx.Err() != nil || errors.Is(err, io.EOF)) {
			return backoff.Permanent(err)
		}
		return err
	})
	return msg, err
}

// process hands msgs to the handler and commits them. It returns an error
// only when ctx ends before the handler accepted the batch.
func (c *BatchConsumer) process(ctx context.Context, r MessageReader, msgs []kafka.Message) error {
	logger := logx.WithContext(ctx)

	deliveries := make([]Delivery, 0, len(msgs))
	for _, msg := range msgs {
		ev, retryCount, err := MessageToEvent(msg)
		if err != nil {
			logger.Errorw("skipping undecodable message",
				logx.Field("partition", msg.Partition),
				logx.Field("offset", msg.Offset),
				logx.Field("error", err.Error()),
			)
			c.metrics.IncPoison()
			continue
		}
		deliveries = append(deliveries, Delivery{Event: ev, RetryCount: retryCount, Message: msg})
	}

	if len(deliveries) > 0 {
		if err := c.handle(ctx, deliveries); err != nil {
			logger.Errorw("batch not processed before shutdown, offsets left uncommitted",
				logx.Field("size", len(msgs)),
				logx.Field("first_offset", msgs[0].Offset),
				logx.Field("error", err.Error()),
			)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
	}

	// The batch was handled; its commit runs even if shutdown starts meanwhile.
	commitCtx := context.WithoutCancel(ctx)
	err := Retry(commitCtx, c.conf.Retry, "commit", func() error {
		return r.CommitMessages(commitCtx, msgs...)
	})
	if err != nil {
		logger.Errorw("failed to commit offsets, batch will be redelivered",
			logx.Field("size", len(msgs)),
			logx.Field("error", err.Error()),
		)
	}
	return nil
}

// handle runs the handler on the same deliveries with exponential backoff
// until it succeeds or ctx is done. An attempt in progress always completes.
func (c *BatchConsumer) handle(ctx context.Context, deliveries []Delivery) error {
	runCtx := context.WithoutCancel(ctx)

	policy := backoff.NewExponentialBackOff()
	if c.conf.Retry.Delay > 0 {
		policy.InitialInterval = c.conf.Retry.Delay
	}
	policy.MaxInterval = c.conf.HandlerMaxBackoff
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = defaultHandlerMaxBackoff
	}
	policy.MaxElapsedTime = 0

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		return c.handler.HandleBatch(runCtx, deliveries)
	}, backoff.WithContext(policy, ctx), func(err error, next time.Duration) {
		logx.WithContext(ctx).Errorw("batch not processed, retrying the same batch",
			logx.Field("size", len(deliveries)),
			logx.Field("attempt", attempt),
			logx.Field("next", next.String()),
			logx.Field("error", err.Error()),
		)
	})
}

type nopMetrics struct{}

func (nopMetrics) IncPoison()           {}
func (nopMetrics) SetLag(string, int64) {}
