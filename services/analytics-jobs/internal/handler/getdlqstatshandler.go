// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"linkhub/services/analytics-jobs/internal/logic"
	"linkhub/services/analytics-jobs/internal/svc"
)

// Count pending and exhausted dead letters
func GetDlqStatsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewGetDlqStatsLogic(r.Context(), svcCtx)
		resp, err := l.GetDlqStats()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
