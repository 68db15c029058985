package eventbus

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/zeromicro/go-zero/core/logx"
)

// RetryConf is the transport-tier retry policy: a fixed delay between a
// bounded number of retries.
type RetryConf struct {
	MaxRetries uint64        `json:",default=3"`
	Delay      time.Duration `json:",default=1s"`
}

// Retry runs op until it succeeds, returns a backoff.Permanent error, the
// retries are used up or ctx is done. The last error is returned.
func Retry(ctx context.Context, c RetryConf, name string, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.Delay), c.MaxRetries),
		ctx,
	)

	return backoff.RetryNotify(op, policy, func(err error, next time.Duration) {
		logx.WithContext(ctx).Infow("transient failure, retrying",
			logx.Field("operation", name),
			logx.Field("error", err.Error()),
			logx.Field("next", next.String()),
		)
	})
}
