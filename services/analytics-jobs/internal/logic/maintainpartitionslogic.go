package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/services/analytics-jobs/internal/svc"
)

type MaintainPartitionsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMaintainPartitionsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MaintainPartitionsLogic {
	return &MaintainPartitionsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// MaintainPartitions creates upcoming partitions and detaches expired ones.
func (l *MaintainPartitionsLogic) MaintainPartitions() {
	l.svcCtx.Partitions.Run(l.ctx)
}
