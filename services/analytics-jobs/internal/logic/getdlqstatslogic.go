package logic

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/services/analytics-jobs/internal/svc"
	"linkhub/services/analytics-jobs/internal/types"
)

type GetDlqStatsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetDlqStatsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetDlqStatsLogic {
	return &GetDlqStatsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetDlqStatsLogic) GetDlqStats() (*types.DlqStatsResponse, error) {
	ctx, cancel := context.WithTimeout(l.ctx, l.svcCtx.Config.OpTimeout)
	defer cancel()

	maxRetries := l.svcCtx.Config.DeadLetter.MaxRetries

	pending, err := l.svcCtx.FailedModel.CountPending(ctx, maxRetries)
	if err != nil {
		return nil, storeUnavailable(fmt.Errorf("count pending dead letters: %w", err))
	}
	exhausted, err := l.svcCtx.FailedModel.CountExhausted(ctx, maxRetries)
	if err != nil {
		return nil, storeUnavailable(fmt.Errorf("count exhausted dead letters: %w", err))
	}

	return &types.DlqStatsResponse{
		Pending:    pending,
		Exhausted:  exhausted,
		MaxRetries: maxRetries,
	}, nil
}

func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
