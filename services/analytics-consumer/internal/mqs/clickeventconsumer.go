package mqs

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/internal/infra/eventbus"
	"linkhub/services/analytics-consumer/internal/logic"
	"linkhub/services/analytics-consumer/internal/svc"
)

// ClickEventConsumer stores batches of click events delivered by the
// batch consumer.
type ClickEventConsumer struct {
	svcCtx *svc.ServiceContext
}

var _ eventbus.BatchHandler = (*ClickEventConsumer)(nil)

func NewClickEventConsumer(svcCtx *svc.ServiceContext) *ClickEventConsumer {
	return &ClickEventConsumer{
		svcCtx: svcCtx,
	}
}

// HandleBatch never fails: every event is inserted, recognised as a
// duplicate or dead-lettered, so the batch can always be committed.
func (c *ClickEventConsumer) HandleBatch(ctx context.Context, batch []eventbus.Delivery) error {
	result := logic.NewProcessBatchLogic(ctx, c.svcCtx).ProcessBatch(batch)

	logx.WithContext(ctx).Infow("click batch processed",
		logx.Field("size", len(batch)),
		logx.Field("inserted", result.Inserted),
		logx.Field("duplicates", result.Duplicates),
		logx.Field("dead_lettered", result.DeadLettered),
	)
	return nil
}
