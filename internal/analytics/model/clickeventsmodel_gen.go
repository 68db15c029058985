package model

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/builder"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/stringx"
)

var (
	clickEventsFieldNames        = builder.RawFieldNames(&ClickEvents{}, true)
	clickEventsRows              = strings.Join(clickEventsFieldNames, ",")
	clickEventsInsertFieldNames  = stringx.Remove(clickEventsFieldNames, "id", "created_at")
	clickEventsRowsExpectAutoSet = strings.Join(clickEventsInsertFieldNames, ",")
)

type (
	clickEventsModel interface {
		FindOneByEventId(ctx context.Context, eventId string, clickedAt time.Time) (*ClickEvents, error)
	}

	defaultClickEventsModel struct {
		conn  sqlx.SqlConn
		table string
	}

	ClickEvents struct {
		Id         int64           `db:"id"`
		EventId    string          `db:"event_id"`
		UrlId      int64           `db:"url_id"`
		ShortCode  string          `db:"short_code"`
		ClickedAt  time.Time       `db:"clicked_at"`
		IpAddress  sql.NullString  `db:"ip_address"`
		UserAgent  sql.NullString  `db:"user_agent"`
		Referrer   sql.NullString  `db:"referrer"`
		DeviceType string          `db:"device_type"`
		Browser    string          `db:"browser"`
		Os         string          `db:"os"`
		Country    sql.NullString  `db:"country"`
		City       sql.NullString  `db:"city"`
		Latitude   sql.NullFloat64 `db:"latitude"`
		Longitude  sql.NullFloat64 `db:"longitude"`
		CreatedAt  time.Time       `db:"created_at"`
	}
)

func newClickEventsModel(conn sqlx.SqlConn) *defaultClickEventsModel {
	return &defaultClickEventsModel{
		conn:  conn,
		table: "click_events",
	}
}

func (m *defaultClickEventsModel) FindOneByEventId(ctx context.Context, eventId string, clickedAt time.Time) (*ClickEvents, error) {
	query := fmt.Sprintf("select %s from %s where event_id = $1 and clicked_at = $2 limit 1", clickEventsRows, m.table)
	var resp ClickEvents
	err := m.conn.QueryRowCtx(ctx, &resp, query, eventId, clickedAt)
	switch err {
	case nil:
		return &resp, nil
	case sqlx.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultClickEventsModel) tableName() string {
	return m.table
}
