package logic

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/services/analytics-jobs/internal/svc"
	"linkhub/services/analytics-jobs/internal/types"
)

type GetAnalyticsLagLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetAnalyticsLagLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetAnalyticsLagLogic {
	return &GetAnalyticsLagLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GetAnalyticsLag reports whether stored analytics trail the click stream.
// A broker that cannot be reached is reported as lag -1, not as an error.
func (l *GetAnalyticsLagLogic) GetAnalyticsLag() (*types.AnalyticsLagResponse, error) {
	ctx, cancel := context.WithTimeout(l.ctx, l.svcCtx.Config.Lag.Timeout)
	defer cancel()

	lag, active, err := l.svcCtx.Lag.Lag(ctx)
	if err != nil {
		l.Errorw("failed to check consumer lag", logx.Field("error", err.Error()))
		return &types.AnalyticsLagResponse{Lag: -1, Message: "Unable to check consumer lag"}, nil
	}
	if !active {
		return &types.AnalyticsLagResponse{Message: "Consumer group not active"}, nil
	}

	if lag > l.svcCtx.Config.Lag.Threshold {
		return &types.AnalyticsLagResponse{
			Lag:     lag,
			Delayed: true,
			Message: fmt.Sprintf("Analytics data may be delayed (%d events behind)", lag),
		}, nil
	}
	return &types.AnalyticsLagResponse{Lag: lag, Message: "Analytics data is up to date"}, nil
}
