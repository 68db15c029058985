package eventbus

import (
	"github.com/segmentio/kafka-go"
	"github.com/zeromicro/go-zero/core/logx"
)

// NewKafkaLogger adapts logx to kafka-go's informational logger.
// kafka-go is chatty, so its messages go to debug level.
func NewKafkaLogger() kafka.Logger {
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		logx.Debugf("kafka: "+msg, args...)
	})
}

// NewKafkaErrorLogger adapts logx to kafka-go's error logger.
func NewKafkaErrorLogger() kafka.Logger {
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		logx.Errorf("kafka: "+msg, args...)
	})
}
