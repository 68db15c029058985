// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"linkhub/services/analytics-jobs/internal/logic"
	"linkhub/services/analytics-jobs/internal/svc"
)

// Run a dead-letter retry pass now
func RetryDeadLettersHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewRetryDeadLettersLogic(r.Context(), svcCtx)
		resp, err := l.RetryDeadLetters()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
