package eventbus

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"linkhub/internal/shared/events"
)

type fakeReader struct {
	mu          sync.Mutex
	msgs        []kafka.Message
	fetchErrs   []error
	committed   []kafka.Message
	commitErr   error
	commitCalls int
	closed      bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.msgs) > 0 {
		msg := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitCalls++
	if r.commitErr != nil {
		return r.commitErr
	}
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Stats() kafka.ReaderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return kafka.ReaderStats{Lag: int64(len(r.msgs))}
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	offsets := make([]int64, 0, len(r.committed))
	for _, msg := range r.committed {
		offsets = append(offsets, msg.Offset)
	}
	return offsets
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type recordingHandler struct {
	mu      sync.Mutex
	batches [][]Delivery
	errs    []error
	err     error
}

func (h *recordingHandler) HandleBatch(ctx context.Context, batch []Delivery) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.batches = append(h.batches, batch)
	if len(h.errs) > 0 {
		err := h.errs[0]
		h.errs = h.errs[1:]
		return err
	}
	return h.err
}

func (h *recordingHandler) handledOffsets() []int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var offsets []int64
	for _, batch := range h.batches {
		for _, d := range batch {
			offsets = append(offsets, d.Message.Offset)
		}
	}
	return offsets
}

func (h *recordingHandler) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.batches)
}

type fakeConsumerMetrics struct {
	mu     sync.Mutex
	poison int
	lag    map[string]int64
}

func (m *fakeConsumerMetrics) IncPoison() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poison++
}

func (m *fakeConsumerMetrics) SetLag(worker string, lag int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lag == nil {
		m.lag = make(map[string]int64)
	}
	m.lag[worker] = lag
}

type BatchConsumerTestSuite struct {
	suite.Suite
	reader  *fakeReader
	handler *recordingHandler
	metrics *fakeConsumerMetrics
	conf    BatchConf
}

func TestBatchConsumerTestSuite(t *testing.T) {
	suite.Run(t, new(BatchConsumerTestSuite))
}

func (s *BatchConsumerTestSuite) SetupTest() {
	s.reader = &fakeReader{}
	s.handler = &recordingHandler{}
	s.metrics = &fakeConsumerMetrics{}
	s.conf = BatchConf{
		Workers:   1,
		BatchSize: 10,
		BatchWait: 20 * time.Millisecond,
		Retry:     RetryConf{MaxRetries: 3, Delay: time.Millisecond},
	}
}

func (s *BatchConsumerTestSuite) message(ev events.ClickEvent, offset int64) kafka.Message {
	msg, err := EventToMessage(ev, 0)
	s.Require().NoError(err)
	msg.Offset = offset
	return msg
}

// runUntil runs the consumer until cond holds, then stops it and returns Run's error.
func (s *BatchConsumerTestSuite) runUntil(sut *BatchConsumer, cond func() bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sut.Run(ctx) }()

	s.Require().Eventually(cond, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		s.FailNow("consumer did not stop")
		return nil
	}
}

func (s *BatchConsumerTestSuite) TestBatchIsHandledThenCommitted() {
	s.reader.msgs = []kafka.Message{
		s.message(events.NewClickEvent(1, "aaa", "", "", ""), 1),
		{Value: []byte("{not json"), Offset: 2},
		s.message(events.NewClickEvent(2, "bbb", "", "", ""), 3),
	}
	sut := NewBatchConsumer([]MessageReader{s.reader}, s.handler, s.conf, s.metrics)

	err := s.runUntil(sut, func() bool { return s.reader.committedCount() == 3 })

	s.ErrorIs(err, context.Canceled)
	s.Require().Equal(1, s.handler.calls())
	batch := s.handler.batches[0]
	s.Require().Len(batch, 2, "poison message is skipped")
	s.Equal("aaa", batch[0].Event.ShortCode)
	s.Equal("bbb", batch[1].Event.ShortCode)
	s.Equal(1, s.metrics.poison)
	s.Contains(s.metrics.lag, "0")
}

func (s *BatchConsumerTestSuite) TestBatchSizeIsBounded() {
	for i := 0; i < 5; i++ {
		s.reader.msgs = append(s.reader.msgs, s.message(events.NewClickEvent(int64(i), "abc", "", "", ""), int64(i)))
	}
	s.conf.BatchSize = 2
	sut := NewBatchConsumer([]MessageReader{s.reader}, s.handler, s.conf, s.metrics)

	s.runUntil(sut, func() bool { return s.reader.committedCount() == 5 })

	s.Equal(3, s.handler.calls())
	for _, batch := range s.handler.batches {
		s.LessOrEqual(len(batch), 2)
	}
}

func (s *BatchConsumerTestSuite) TestFailedBatchIsRetriedBeforeLaterOffsetsCommit() {
	s.reader.msgs = []kafka.Message{
		s.message(events.NewClickEvent(1, "aaa", "", "", ""), 1),
		s.message(events.NewClickEvent(2, "bbb", "", "", ""), 2),
	}
	s.conf.BatchSize = 1
	s.handler.errs = []error{errors.New("database unreachable"), errors.New("database unreachable")}
	sut := NewBatchConsumer([]MessageReader{s.reader}, s.handler, s.conf, s.metrics)

	s.runUntil(sut, func() bool { return s.reader.committedCount() == 2 })

	s.Equal([]int64{1, 1, 1, 2}, s.handler.handledOffsets(), "the failed batch is handed over again before the next one")
	s.Equal([]int64{1, 2}, s.reader.committedOffsets())
}

func (s *BatchConsumerTestSuite) TestHandlerErrorLeavesOffsetsUncommitted() {
	s.reader.msgs = []kafka.Message{
		s.message(events.NewClickEvent(1, "aaa", "", "", ""), 1),
		s.message(events.NewClickEvent(2, "bbb", "", "", ""), 2),
	}
	s.conf.BatchSize = 1
	s.handler.err = errors.New("database unreachable")
	sut := NewBatchConsumer([]MessageReader{s.reader}, s.handler, s.conf, s.metrics)

	err := s.runUntil(sut, func() bool { return s.handler.calls() >= 3 })

	s.ErrorIs(err, context.Canceled)
	s.Zero(s.reader.commitCalls)
	for _, offset := range s.handler.handledOffsets() {
		s.EqualValues(1, offset, "no later batch is fetched while the first keeps failing")
	}
}

func (s *BatchConsumerTestSuite) TestCommitIsRetriedThenGivenUp() {
	s.reader.msgs = []kafka.Message{s.message(events.NewClickEvent(1, "aaa", "", "", ""), 1)}
	s.reader.commitErr = errors.New("coordinator not available")
	sut := NewBatchConsumer([]MessageReader{s.reader}, s.handler, s.conf, s.metrics)

	s.runUntil(sut, func() bool {
		s.reader.mu.Lock()
		defer s.reader.mu.Unlock()
		return s.reader.commitCalls == 4
	})

	s.Equal(4, s.reader.commitCalls, "one attempt plus three retries")
}

func (s *BatchConsumerTestSuite) TestTransientFetchErrorIsRetried() {
	s.reader.fetchErrs = []error{errors.New("connection reset")}
	s.reader.msgs = []kafka.Message{s.message(events.NewClickEvent(1, "aaa", "", "", ""), 1)}
	sut := NewBatchConsumer([]MessageReader{s.reader}, s.handler, s.conf, s.metrics)

	s.runUntil(sut, func() bool { return s.reader.committedCount() == 1 })

	s.Equal(1, s.handler.calls())
}

func TestBatchConsumer_StartStop(t *testing.T) {
	readers := []*fakeReader{{}, {}, {}}
	sut := NewBatchConsumer(
		[]MessageReader{readers[0], readers[1], readers[2]},
		&recordingHandler{},
		BatchConf{BatchSize: 10, BatchWait: time.Millisecond, Retry: RetryConf{MaxRetries: 1, Delay: time.Millisecond}},
		nil,
	)

	started := make(chan struct{})
	go func() {
		close(started)
		sut.Start()
	}()
	<-started

	sut.Stop()

	for _, r := range readers {
		assert.True(t, r.closed)
	}
}

func TestBatchConsumer_ReaderClosedEndsRun(t *testing.T) {
	reader := &fakeReader{fetchErrs: []error{errors.New("fail"), io.EOF}}
	sut := NewBatchConsumer([]MessageReader{reader}, &recordingHandler{},
		BatchConf{BatchSize: 1, BatchWait: time.Millisecond, Retry: RetryConf{MaxRetries: 3, Delay: time.Millisecond}}, nil)

	err := sut.Run(context.Background())

	require.ErrorIs(t, err, io.EOF)
}
