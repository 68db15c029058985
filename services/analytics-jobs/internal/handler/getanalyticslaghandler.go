// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"linkhub/services/analytics-jobs/internal/logic"
	"linkhub/services/analytics-jobs/internal/svc"
)

// Report analytics consumer lag
func GetAnalyticsLagHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewGetAnalyticsLagLogic(r.Context(), svcCtx)
		resp, err := l.GetAnalyticsLag()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
