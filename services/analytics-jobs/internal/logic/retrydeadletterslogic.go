package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/services/analytics-jobs/internal/svc"
	"linkhub/services/analytics-jobs/internal/types"
)

type RetryDeadLettersLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRetryDeadLettersLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RetryDeadLettersLogic {
	return &RetryDeadLettersLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// RetryDeadLetters republishes every due dead letter once.
func (l *RetryDeadLettersLogic) RetryDeadLetters() (*types.RetryDeadLettersResponse, error) {
	result, err := l.svcCtx.Retrier.RunOnce(l.ctx)
	if err != nil {
		l.Errorw("dead-letter retry pass failed", logx.Field("error", err.Error()))
		return nil, storeUnavailable(err)
	}

	l.svcCtx.Metrics.ObserveRetry(result.Republished, result.Failed, result.Exhausted)
	if result.Found > 0 {
		l.Infow("dead-letter retry pass finished",
			logx.Field("found", result.Found),
			logx.Field("republished", result.Republished),
			logx.Field("failed", result.Failed),
			logx.Field("exhausted", result.Exhausted),
		)
	}

	return &types.RetryDeadLettersResponse{
		Found:       result.Found,
		Republished: result.Republished,
		Failed:      result.Failed,
		Exhausted:   result.Exhausted,
	}, nil
}
