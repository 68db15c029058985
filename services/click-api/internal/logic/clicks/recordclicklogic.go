// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package clicks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/internal/shared/events"
	"linkhub/pkg/problemdetails"
	"linkhub/services/click-api/internal/svc"
	"linkhub/services/click-api/internal/types"
)

type RecordClickLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Record a click for analytics
func NewRecordClickLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RecordClickLogic {
	return &RecordClickLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// RecordClick builds a click event from the request and hands it to the
// producer. It returns as soon as the event is handed off.
func (l *RecordClickLogic) RecordClick(req *types.RecordClickRequest, r *http.Request) (*types.RecordClickResponse, error) {
	if fieldErrors := validate(req); len(fieldErrors) > 0 {
		return nil, problemdetails.NewValidation(fieldErrors)
	}

	ev := events.NewClickEvent(req.UrlId, req.ShortCode, events.ClientIP(r), req.UserAgent, req.Referrer)
	l.svcCtx.Producer.Publish(l.ctx, ev)

	l.Infow("click recorded",
		logx.Field("event_id", ev.EventID.String()),
		logx.Field("short_code", ev.ShortCode),
	)

	return &types.RecordClickResponse{
		EventId:   ev.EventID.String(),
		ClickedAt: ev.ClickedAt.Format(time.RFC3339Nano),
	}, nil
}

func validate(req *types.RecordClickRequest) []problemdetails.FieldError {
	var errs []problemdetails.FieldError
	if req.UrlId <= 0 {
		errs = append(errs, problemdetails.FieldError{Field: "urlId", Message: "must be a positive integer"})
	}
	switch {
	case req.ShortCode == "":
		errs = append(errs, problemdetails.FieldError{Field: "shortCode", Message: "is required"})
	case len(req.ShortCode) > events.MaxShortCodeLen:
		errs = append(errs, problemdetails.FieldError{Field: "shortCode", Message: fmt.Sprintf("must be at most %d characters", events.MaxShortCodeLen)})
	}
	return errs
}
