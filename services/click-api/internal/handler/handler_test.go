package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkhub/internal/shared/events"
	"linkhub/pkg/problemdetails"
	"linkhub/services/click-api/internal/handler/clicks"
	"linkhub/services/click-api/internal/svc"
	"linkhub/services/click-api/internal/types"
)

type countingPublisher struct {
	count int
}

func (p *countingPublisher) Publish(context.Context, events.ClickEvent) {
	p.count++
}

func TestRecordClickHandler_Accepted(t *testing.T) {
	pub := &countingPublisher{}
	svcCtx := &svc.ServiceContext{Producer: pub}

	r := httptest.NewRequest(http.MethodPost, "/api/v1/clicks", strings.NewReader(`{"urlId":7,"shortCode":"abc123"}`))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("User-Agent", "curl/8.7.1")
	rec := httptest.NewRecorder()

	clicks.RecordClickHandler(svcCtx)(rec, r)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp types.RecordClickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.EventId)
	assert.Equal(t, 1, pub.count)
}

func TestErrorHandler(t *testing.T) {
	status, body := ErrorHandler(context.Background(), problemdetails.NewValidation([]problemdetails.FieldError{{Field: "urlId", Message: "required"}}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, body.(*problemdetails.ProblemDetail).Errors, 1)

	status, body = ErrorHandler(context.Background(), errors.New(`field "shortCode" is not set`))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body.(*problemdetails.ProblemDetail).Detail, "shortCode")
}
