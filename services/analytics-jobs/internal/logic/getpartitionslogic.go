package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/services/analytics-jobs/internal/svc"
	"linkhub/services/analytics-jobs/internal/types"
)

const monthLayout = time.DateOnly

type GetPartitionsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetPartitionsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetPartitionsLogic {
	return &GetPartitionsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetPartitionsLogic) GetPartitions() (*types.PartitionsResponse, error) {
	infos, err := l.svcCtx.Partitions.Stats(l.ctx)
	if err != nil {
		l.Errorw("failed to read partition stats", logx.Field("error", err.Error()))
		return nil, storeUnavailable(err)
	}

	resp := &types.PartitionsResponse{
		Partitions: make([]types.PartitionInfo, 0, len(infos)),
		Total:      len(infos),
	}
	for _, info := range infos {
		item := types.PartitionInfo{
			Name:        info.Name,
			SizeBytes:   info.SizeBytes,
			RowEstimate: info.RowEstimate,
		}
		if !info.From.IsZero() {
			item.From = info.From.Format(monthLayout)
			item.To = info.To.Format(monthLayout)
		}
		resp.Partitions = append(resp.Partitions, item)
	}
	return resp, nil
}
