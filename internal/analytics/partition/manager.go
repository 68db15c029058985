package partition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/internal/analytics/model"
)

const (
	// ParentTable is the range-partitioned event store.
	ParentTable = "click_events"

	namePrefix = ParentTable + "_"
	nameLayout = "2006_01"
)

// Conf configures the partition lifecycle.
type Conf struct {
	MonthsAhead     int           `json:",default=3"`
	RetentionMonths int           `json:",default=12"`
	OpTimeout       time.Duration `json:",default=30s"`
}

// Info describes one monthly partition. From and To are zero for
// partitions whose name carries no month.
type Info struct {
	Name        string    `json:"name"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	SizeBytes   int64     `json:"sizeBytes"`
	RowEstimate int64     `json:"rowEstimate"`
}

// Manager creates monthly partitions ahead of need and detaches expired ones.
type Manager struct {
	catalog model.PartitionsModel
	conf    Conf
	now     func() time.Time
}

// NewManager creates a Manager over the partition catalog.
func NewManager(catalog model.PartitionsModel, c Conf) *Manager {
	return &Manager{
		catalog: catalog,
		conf:    c,
		now:     time.Now,
	}
}

// PartitionName returns click_events_YYYY_MM for the month containing t.
func PartitionName(t time.Time) string {
	return namePrefix + MonthStart(t).Format(nameLayout)
}

// ParsePartitionMonth returns the first instant of the month a partition
// name refers to. Names not of the form click_events_YYYY_MM are rejected.
func ParsePartitionMonth(name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, namePrefix)
	if !ok {
		return time.Time{}, false
	}
	month, err := time.Parse(nameLayout, rest)
	if err != nil {
		return time.Time{}, false
	}
	return month.UTC(), true
}

// MonthStart truncates t to the first instant of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Run performs one maintenance pass: create-ahead, then detach-old. The
// phases are independent; a failure in one does not skip the other.
func (m *Manager) Run(ctx context.Context) {
	created := m.CreateAhead(ctx)

	detached, err := m.DetachOld(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorw("detach-old phase failed", logx.Field("error", err.Error()))
	}

	logx.WithContext(ctx).Infow("partition maintenance finished",
		logx.Field("created", created),
		logx.Field("detached", detached),
	)
}

// CreateAhead makes sure the current month and the next MonthsAhead months
// have a partition. It returns the partitions it created. Each month is
// handled on its own; errors are logged and never abort the pass.
func (m *Manager) CreateAhead(ctx context.Context) []string {
	var created []string
	start := MonthStart(m.now())

	for i := 0; i <= m.conf.MonthsAhead; i++ {
		from := start.AddDate(0, i, 0)
		to := from.AddDate(0, 1, 0)
		name := PartitionName(from)

		ok, err := m.createIfMissing(ctx, name, from, to)
		if err != nil {
			// Another instance may have created it first.
			logx.WithContext(ctx).Infow("could not create partition",
				logx.Field("partition", name),
				logx.Field("error", err.Error()),
			)
			continue
		}
		if ok {
			logx.WithContext(ctx).Infow("created partition",
				logx.Field("partition", name),
				logx.Field("from", from),
				logx.Field("to", to),
			)
			created = append(created, name)
		}
	}

	return created
}

// EnsureCurrent runs CreateAhead and fails when the month of now still has
// no partition, since no click could be stored then.
func (m *Manager) EnsureCurrent(ctx context.Context) error {
	m.CreateAhead(ctx)

	name := PartitionName(m.now())
	ctx, cancel := context.WithTimeout(ctx, m.conf.OpTimeout)
	defer cancel()

	exists, err := m.catalog.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("check partition %s: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("partition %s is missing", name)
	}
	return nil
}

func (m *Manager) createIfMissing(ctx context.Context, name string, from, to time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, m.conf.OpTimeout)
	defer cancel()

	exists, err := m.catalog.Exists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check partition: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := m.catalog.Create(ctx, name, from, to); err != nil {
		return false, err
	}
	return true, nil
}

// DetachOld detaches every partition whose month starts before the
// retention cutoff. Detached partitions stay as standalone tables.
// Only listing the partitions can fail the pass.
func (m *Manager) DetachOld(ctx context.Context) ([]string, error) {
	listCtx, cancel := context.WithTimeout(ctx, m.conf.OpTimeout)
	names, err := m.catalog.List(listCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	cutoff := MonthStart(m.now()).AddDate(0, -m.conf.RetentionMonths, 0)

	var detached []string
	for _, name := range names {
		month, ok := ParsePartitionMonth(name)
		if !ok || !month.Before(cutoff) {
			continue
		}

		if err := m.detach(ctx, name); err != nil {
			logx.WithContext(ctx).Errorw("failed to detach partition",
				logx.Field("partition", name),
				logx.Field("error", err.Error()),
			)
			continue
		}

		logx.WithContext(ctx).Infow("detached old partition",
			logx.Field("partition", name),
			logx.Field("retention_months", m.conf.RetentionMonths),
		)
		detached = append(detached, name)
	}

	return detached, nil
}

func (m *Manager) detach(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, m.conf.OpTimeout)
	defer cancel()
	return m.catalog.Detach(ctx, name)
}

// List returns the attached partitions.
func (m *Manager) List(ctx context.Context) ([]Info, error) {
	ctx, cancel := context.WithTimeout(ctx, m.conf.OpTimeout)
	defer cancel()

	names, err := m.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		infos = append(infos, newInfo(name))
	}
	return infos, nil
}

// Stats returns the attached partitions with their physical size and
// approximate row count.
func (m *Manager) Stats(ctx context.Context) ([]Info, error) {
	ctx, cancel := context.WithTimeout(ctx, m.conf.OpTimeout)
	defer cancel()

	stats, err := m.catalog.Stats(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(stats))
	for _, st := range stats {
		info := newInfo(st.Name)
		info.SizeBytes = st.SizeBytes
		info.RowEstimate = max(st.RowEstimate, 0)
		infos = append(infos, info)
	}
	return infos, nil
}

func newInfo(name string) Info {
	info := Info{Name: name}
	if month, ok := ParsePartitionMonth(name); ok {
		info.From = month
		info.To = month.AddDate(0, 1, 0)
	}
	return info
}
