package model

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

const partitionBoundLayout = "2006-01-02 15:04:05-07:00"

var _ PartitionsModel = (*defaultPartitionsModel)(nil)

type (
	// PartitionsModel reads and changes the partition catalog of a
	// range-partitioned parent table.
	PartitionsModel interface {
		List(ctx context.Context) ([]string, error)
		Exists(ctx context.Context, name string) (bool, error)
		Create(ctx context.Context, name string, from, to time.Time) error
		Detach(ctx context.Context, name string) error
		Stats(ctx context.Context) ([]*PartitionStats, error)
		Count(ctx context.Context) (int64, error)
	}

	defaultPartitionsModel struct {
		conn   sqlx.SqlConn
		parent string
	}

	PartitionStats struct {
		Name        string `db:"name"`
		SizeBytes   int64  `db:"size_bytes"`
		RowEstimate int64  `db:"row_estimate"`
	}
)

// NewPartitionsModel returns a catalog model for the partitions of parent.
func NewPartitionsModel(conn sqlx.SqlConn, parent string) PartitionsModel {
	return &defaultPartitionsModel{
		conn:   conn,
		parent: parent,
	}
}

// List returns the names of the partitions currently attached to the parent.
func (m *defaultPartitionsModel) List(ctx context.Context) ([]string, error) {
	query := `select c.relname from pg_inherits i join pg_class c on c.oid = i.inhrelid
		where i.inhparent = $1::regclass order by c.relname`
	var names []string
	if err := m.conn.QueryRowsCtx(ctx, &names, query, m.parent); err != nil {
		return nil, err
	}
	return names, nil
}

// Exists reports whether a table with this name exists in the current schema,
// attached or not.
func (m *defaultPartitionsModel) Exists(ctx context.Context, name string) (bool, error) {
	query := "select exists (select 1 from pg_tables where schemaname = current_schema() and tablename = $1)"
	var exists bool
	if err := m.conn.QueryRowCtx(ctx, &exists, query, name); err != nil {
		return false, err
	}
	return exists, nil
}

// Create creates partition name covering [from, to).
func (m *defaultPartitionsModel) Create(ctx context.Context, name string, from, to time.Time) error {
	query := fmt.Sprintf("create table if not exists %s partition of %s for values from (%s) to (%s)",
		pq.QuoteIdentifier(name), pq.QuoteIdentifier(m.parent),
		pq.QuoteLiteral(from.UTC().Format(partitionBoundLayout)),
		pq.QuoteLiteral(to.UTC().Format(partitionBoundLayout)))
	_, err := m.conn.ExecCtx(ctx, query)
	return err
}

// Detach turns the partition into a standalone table. Data is kept.
func (m *defaultPartitionsModel) Detach(ctx context.Context, name string) error {
	query := fmt.Sprintf("alter table %s detach partition %s", pq.QuoteIdentifier(m.parent), pq.QuoteIdentifier(name))
	_, err := m.conn.ExecCtx(ctx, query)
	return err
}

// Stats reports physical size and the planner's row estimate per partition.
func (m *defaultPartitionsModel) Stats(ctx context.Context) ([]*PartitionStats, error) {
	query := `select c.relname as name, pg_relation_size(c.oid) as size_bytes,
		greatest(c.reltuples, 0)::bigint as row_estimate
		from pg_inherits i join pg_class c on c.oid = i.inhrelid
		where i.inhparent = $1::regclass order by c.relname`
	var resp []*PartitionStats
	if err := m.conn.QueryRowsCtx(ctx, &resp, query, m.parent); err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *defaultPartitionsModel) Count(ctx context.Context) (int64, error) {
	query := "select count(*) from pg_inherits where inhparent = $1::regclass"
	var count int64
	if err := m.conn.QueryRowCtx(ctx, &count, query, m.parent); err != nil {
		return 0, err
	}
	return count, nil
}
