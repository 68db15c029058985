package logic

import (
	"context"
	"database/sql"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"linkhub/internal/analytics/model"
	"linkhub/internal/infra/eventbus"
	"linkhub/internal/shared/events"
	"linkhub/services/analytics-consumer/internal/svc"
)

const (
	ReasonEnrichment = "enrichment failure"
	ReasonInsert     = "processing/insert failure"
)

// Outcome is what happened to one event of a batch.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeDuplicate
	OutcomeDeadLettered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeDeadLettered:
		return "dead-lettered"
	default:
		return "unknown"
	}
}

type ItemResult struct {
	EventID uuid.UUID
	Outcome Outcome
	Reason  string
}

// BatchResult accounts for every event of a batch:
// Inserted + Duplicates + DeadLettered == len(Items).
type BatchResult struct {
	Inserted     int
	Duplicates   int
	DeadLettered int
	Items        []ItemResult
}

type ProcessBatchLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewProcessBatchLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ProcessBatchLogic {
	return &ProcessBatchLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ProcessBatch enriches every event, writes the batch in one statement and
// falls back to row-by-row inserts when the bulk write fails. Events that
// cannot be enriched or stored are dead-lettered; no event fails the batch.
func (l *ProcessBatchLogic) ProcessBatch(batch []eventbus.Delivery) BatchResult {
	start := time.Now()
	items := make([]ItemResult, len(batch))

	var (
		rows     []*model.ClickEvents
		enriched []events.EnrichedClickEvent
		indexes  []int
	)
	for i, d := range batch {
		items[i].EventID = d.Event.EventID

		enrichStart := time.Now()
		ev, err := l.svcCtx.Enricher.Enrich(d.Event)
		l.svcCtx.Metrics.ObserveEnrichment(time.Since(enrichStart))
		if err != nil {
			l.Errorw("enrichment failed",
				logx.Field("event_id", d.Event.EventID.String()),
				logx.Field("error", err.Error()),
			)
			items[i] = l.deadLetter(d, ReasonEnrichment+": "+err.Error())
			continue
		}

		rows = append(rows, toClickEventRow(ev))
		enriched = append(enriched, ev)
		indexes = append(indexes, i)
	}

	if len(rows) > 0 {
		inserted, err := l.bulkInsert(rows)
		if err != nil {
			l.Errorw("bulk insert failed, falling back to row-by-row",
				logx.Field("rows", len(rows)),
				logx.Field("error", err.Error()),
			)
			inserted = nil
		}

		for j, i := range indexes {
			if inserted != nil {
				items[i].Outcome = outcomeOf(inserted[j])
				continue
			}

			ok, err := l.insertOne(rows[j])
			if err != nil {
				l.Errorw("insert failed",
					logx.Field("event_id", rows[j].EventId),
					logx.Field("error", err.Error()),
				)
				items[i] = l.deadLetter(batch[i], ReasonInsert+": "+err.Error())
				continue
			}
			items[i].Outcome = outcomeOf(ok)
		}

		for j, i := range indexes {
			if items[i].Outcome == OutcomeInserted {
				l.svcCtx.Metrics.IncSource(l.svcCtx.Referers.ClassifySource(enriched[j].Referrer))
			}
		}
	}

	result := BatchResult{Items: items}
	for _, item := range items {
		switch item.Outcome {
		case OutcomeInserted:
			result.Inserted++
		case OutcomeDuplicate:
			result.Duplicates++
		case OutcomeDeadLettered:
			result.DeadLettered++
		}
	}

	l.svcCtx.Metrics.ObserveBatch(result.Inserted, result.Duplicates, result.DeadLettered, time.Since(start))
	return result
}

func (l *ProcessBatchLogic) bulkInsert(rows []*model.ClickEvents) ([]bool, error) {
	ctx, cancel := context.WithTimeout(l.ctx, l.svcCtx.Config.OpTimeout)
	defer cancel()
	return l.svcCtx.ClickModel.BulkInsertIgnore(ctx, rows)
}

func (l *ProcessBatchLogic) insertOne(row *model.ClickEvents) (bool, error) {
	ctx, cancel := context.WithTimeout(l.ctx, l.svcCtx.Config.OpTimeout)
	defer cancel()
	return l.svcCtx.ClickModel.InsertIgnore(ctx, row)
}

func (l *ProcessBatchLogic) deadLetter(d eventbus.Delivery, reason string) ItemResult {
	// Failures of either write are logged by the writer; the event is
	// accounted as dead-lettered either way.
	_ = l.svcCtx.DeadLetter.DeadLetter(l.ctx, d.Event, reason, d.RetryCount)
	return ItemResult{EventID: d.Event.EventID, Outcome: OutcomeDeadLettered, Reason: reason}
}

func outcomeOf(inserted bool) Outcome {
	if inserted {
		return OutcomeInserted
	}
	return OutcomeDuplicate
}

// toClickEventRow maps an enriched event to its table row. An IP address
// that does not parse is stored as NULL rather than failing the insert.
func toClickEventRow(ev events.EnrichedClickEvent) *model.ClickEvents {
	row := &model.ClickEvents{
		EventId:    ev.EventID.String(),
		UrlId:      ev.URLID,
		ShortCode:  ev.ShortCode,
		ClickedAt:  ev.ClickedAt,
		UserAgent:  nullString(ev.UserAgent),
		Referrer:   nullString(ev.ReferrerOrEmpty()),
		DeviceType: ev.DeviceType,
		Browser:    ev.Browser,
		Os:         ev.OS,
	}
	if addr, err := netip.ParseAddr(ev.IPAddress); err == nil {
		row.IpAddress = nullString(addr.String())
	}
	if ev.Country != nil {
		row.Country = nullString(*ev.Country)
	}
	if ev.City != nil {
		row.City = nullString(*ev.City)
	}
	if ev.Latitude != nil && ev.Longitude != nil {
		row.Latitude = sql.NullFloat64{Float64: *ev.Latitude, Valid: true}
		row.Longitude = sql.NullFloat64{Float64: *ev.Longitude, Valid: true}
	}
	return row
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
