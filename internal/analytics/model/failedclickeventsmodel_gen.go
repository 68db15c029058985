package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/builder"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	failedClickEventsFieldNames = builder.RawFieldNames(&FailedClickEvents{}, true)
	failedClickEventsRows       = strings.Join(failedClickEventsFieldNames, ",")
)

type (
	failedClickEventsModel interface {
		FindOne(ctx context.Context, id int64) (*FailedClickEvents, error)
		Delete(ctx context.Context, id int64) error
	}

	defaultFailedClickEventsModel struct {
		conn  sqlx.SqlConn
		table string
	}

	FailedClickEvents struct {
		Id            int64     `db:"id"`
		EventId       string    `db:"event_id"`
		ClickedAt     time.Time `db:"clicked_at"`
		Payload       string    `db:"payload"`
		FailureReason string    `db:"failure_reason"`
		RetryCount    int64     `db:"retry_count"`
		CreatedAt     time.Time `db:"created_at"`
		NextRetryAt   time.Time `db:"next_retry_at"`
		Version       int64     `db:"version"`
	}
)

func newFailedClickEventsModel(conn sqlx.SqlConn) *defaultFailedClickEventsModel {
	return &defaultFailedClickEventsModel{
		conn:  conn,
		table: "failed_click_events",
	}
}

func (m *defaultFailedClickEventsModel) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("delete from %s where id = $1", m.table)
	_, err := m.conn.ExecCtx(ctx, query, id)
	return err
}

func (m *defaultFailedClickEventsModel) FindOne(ctx context.Context, id int64) (*FailedClickEvents, error) {
	query := fmt.Sprintf("select %s from %s where id = $1 limit 1", failedClickEventsRows, m.table)
	var resp FailedClickEvents
	err := m.conn.QueryRowCtx(ctx, &resp, query, id)
	switch err {
	case nil:
		return &resp, nil
	case sqlx.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}
