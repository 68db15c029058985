// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package clicks

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"linkhub/services/click-api/internal/logic/clicks"
	"linkhub/services/click-api/internal/svc"
	"linkhub/services/click-api/internal/types"
)

// Record a click for analytics
func RecordClickHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RecordClickRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := clicks.NewRecordClickLogic(r.Context(), svcCtx)
		resp, err := l.RecordClick(&req, r)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusAccepted, resp)
		}
	}
}
