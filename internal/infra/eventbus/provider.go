package eventbus

import (
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/zeromicro/go-queue/kq"
)

// KafkaConf locates the brokers and topics.
type KafkaConf struct {
	Brokers  []string
	Topic    string `json:",default=click-events"`
	DLQTopic string `json:",default=click-events-dlq"`
}

// WriterConf tunes the kafka-go writer.
type WriterConf struct {
	RequiredAcks int           `json:",default=-1"`
	BatchTimeout time.Duration `json:",default=10ms"`
	WriteTimeout time.Duration `json:",default=5s"`
	MaxAttempts  int           `json:",default=1"`
}

// PublisherConf configures an EventBus.
type PublisherConf struct {
	Writer      WriterConf
	SendTimeout time.Duration `json:",default=5s"`
	Retry       RetryConf
	Breaker     BreakerConf
}

// ReaderConf tunes the kafka-go group readers.
type ReaderConf struct {
	GroupID  string        `json:",default=analytics-consumer-group"`
	MinBytes int           `json:",default=1"`
	MaxBytes int           `json:",default=10485760"`
	MaxWait  time.Duration `json:",default=500ms"`
}

// NewWriter creates a synchronous writer that hashes message keys to partitions,
// so every click on a short code lands on the same partition.
func NewWriter(c KafkaConf, wc WriterConf) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequiredAcks(wc.RequiredAcks),
		BatchTimeout:           wc.BatchTimeout,
		WriteTimeout:           wc.WriteTimeout,
		MaxAttempts:            wc.MaxAttempts,
		AllowAutoTopicCreation: true,
		Logger:                 NewKafkaLogger(),
		ErrorLogger:            NewKafkaErrorLogger(),
	}
}

// NewReader creates a consumer-group reader. Offsets are committed explicitly.
func NewReader(c KafkaConf, rc ReaderConf) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.Brokers,
		GroupID:     rc.GroupID,
		Topic:       c.Topic,
		MinBytes:    rc.MinBytes,
		MaxBytes:    rc.MaxBytes,
		MaxWait:     rc.MaxWait,
		StartOffset: kafka.FirstOffset,
		Logger:      NewKafkaLogger(),
		ErrorLogger: NewKafkaErrorLogger(),
	})
}

// NewReaders creates n readers in the same group; the group protocol
// assigns each a disjoint set of partitions.
func NewReaders(c KafkaConf, rc ReaderConf, n int) []MessageReader {
	readers := make([]MessageReader, 0, n)
	for i := 0; i < n; i++ {
		readers = append(readers, NewReader(c, rc))
	}
	return readers
}

// NewDLQPusher creates a synchronous go-queue pusher for the dead-letter topic.
func NewDLQPusher(c KafkaConf) *kq.Pusher {
	return kq.NewPusher(c.Brokers, c.DLQTopic, kq.WithSyncPush(), kq.WithAllowAutoTopicCreation())
}
