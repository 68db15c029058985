// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"linkhub/services/analytics-jobs/internal/logic"
	"linkhub/services/analytics-jobs/internal/svc"
)

// List event store partitions with size and row estimates
func GetPartitionsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewGetPartitionsLogic(r.Context(), svcCtx)
		resp, err := l.GetPartitions()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
