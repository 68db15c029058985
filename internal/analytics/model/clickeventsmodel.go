package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ ClickEventsModel = (*customClickEventsModel)(nil)

type (
	// ClickEventsModel is an interface to be customized, add more methods here,
	// and implement the added methods in customClickEventsModel.
	ClickEventsModel interface {
		clickEventsModel
		withSession(session sqlx.Session) ClickEventsModel
		BulkInsertIgnore(ctx context.Context, rows []*ClickEvents) ([]bool, error)
		InsertIgnore(ctx context.Context, row *ClickEvents) (bool, error)
		ApproxCount(ctx context.Context) (int64, error)
	}

	customClickEventsModel struct {
		*defaultClickEventsModel
	}

	insertedClickEvent struct {
		EventId   string    `db:"event_id"`
		ClickedAt time.Time `db:"clicked_at"`
	}

	clickEventKey struct {
		eventID   string
		clickedAt int64
	}
)

// NewClickEventsModel returns a model for the database table.
func NewClickEventsModel(conn sqlx.SqlConn) ClickEventsModel {
	return &customClickEventsModel{
		defaultClickEventsModel: newClickEventsModel(conn),
	}
}

func (m *customClickEventsModel) withSession(session sqlx.Session) ClickEventsModel {
	return NewClickEventsModel(sqlx.NewSqlConnFromSession(session))
}

// BulkInsertIgnore writes all rows in one statement. Rows whose
// (event_id, clicked_at) already exists are skipped. The result reports,
// per input row, whether it was inserted (true) or a duplicate (false).
func (m *customClickEventsModel) BulkInsertIgnore(ctx context.Context, rows []*ClickEvents) ([]bool, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	width := len(clickEventsInsertFieldNames)
	values := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*width)
	for i, row := range rows {
		values = append(values, clickEventsPlaceholders(i*width))
		args = append(args, row.insertArgs()...)
	}

	query := fmt.Sprintf("insert into %s (%s) values %s on conflict (event_id, clicked_at) do nothing returning event_id, clicked_at",
		m.table, clickEventsRowsExpectAutoSet, strings.Join(values, ", "))

	var returned []*insertedClickEvent
	if err := m.conn.QueryRowsCtx(ctx, &returned, query, args...); err != nil {
		return nil, err
	}

	return markInserted(rows, returned), nil
}

// markInserted maps RETURNING output back onto the input rows. The first
// occurrence of a key in the batch takes the insert, later ones are duplicates.
func markInserted(rows []*ClickEvents, returned []*insertedClickEvent) []bool {
	remaining := lo.CountValues(lo.Map(returned, func(r *insertedClickEvent, _ int) clickEventKey {
		return newClickEventKey(r.EventId, r.ClickedAt)
	}))

	inserted := make([]bool, len(rows))
	for i, row := range rows {
		key := newClickEventKey(row.EventId, row.ClickedAt)
		if remaining[key] > 0 {
			inserted[i] = true
			remaining[key]--
		}
	}
	return inserted
}

// newClickEventKey normalizes to the microsecond precision Postgres stores.
func newClickEventKey(eventID string, clickedAt time.Time) clickEventKey {
	return clickEventKey{
		eventID:   strings.ToLower(eventID),
		clickedAt: clickedAt.Round(time.Microsecond).UnixMicro(),
	}
}

// InsertIgnore writes a single row and reports whether it was new.
func (m *customClickEventsModel) InsertIgnore(ctx context.Context, row *ClickEvents) (bool, error) {
	query := fmt.Sprintf("insert into %s (%s) values %s on conflict (event_id, clicked_at) do nothing",
		m.table, clickEventsRowsExpectAutoSet, clickEventsPlaceholders(0))

	result, err := m.conn.ExecCtx(ctx, query, row.insertArgs()...)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// ApproxCount sums the planner's row estimates over all partitions.
// It never scans the table.
func (m *customClickEventsModel) ApproxCount(ctx context.Context) (int64, error) {
	query := `select coalesce(sum(greatest(c.reltuples, 0)), 0)::bigint
		from pg_inherits i join pg_class c on c.oid = i.inhrelid
		where i.inhparent = $1::regclass`
	var count int64
	if err := m.conn.QueryRowCtx(ctx, &count, query, m.table); err != nil {
		return 0, err
	}
	return count, nil
}

func clickEventsPlaceholders(offset int) string {
	ph := make([]string, len(clickEventsInsertFieldNames))
	for i, name := range clickEventsInsertFieldNames {
		if name == "ip_address" {
			ph[i] = fmt.Sprintf("nullif($%d, '')::inet", offset+i+1)
			continue
		}
		ph[i] = fmt.Sprintf("$%d", offset+i+1)
	}
	return "(" + strings.Join(ph, ", ") + ")"
}

// insertArgs follows the field order of clickEventsInsertFieldNames.
func (r *ClickEvents) insertArgs() []any {
	return []any{
		r.EventId,
		r.UrlId,
		r.ShortCode,
		r.ClickedAt,
		r.IpAddress.String,
		r.UserAgent,
		r.Referrer,
		r.DeviceType,
		r.Browser,
		r.Os,
		r.Country,
		r.City,
		r.Latitude,
		r.Longitude,
	}
}
