package eventbus

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// AdminClient is the subset of *kafka.Client needed to compute group lag.
type AdminClient interface {
	Metadata(ctx context.Context, req *kafka.MetadataRequest) (*kafka.MetadataResponse, error)
	OffsetFetch(ctx context.Context, req *kafka.OffsetFetchRequest) (*kafka.OffsetFetchResponse, error)
	ListOffsets(ctx context.Context, req *kafka.ListOffsetsRequest) (*kafka.ListOffsetsResponse, error)
}

// LagMonitor computes how far a consumer group is behind the end of a topic.
type LagMonitor struct {
	client  AdminClient
	topic   string
	groupID string
}

// NewLagMonitor creates a LagMonitor for groupID on topic.
func NewLagMonitor(client AdminClient, topic, groupID string) *LagMonitor {
	return &LagMonitor{client: client, topic: topic, groupID: groupID}
}

// NewAdminClient creates a kafka-go client for the configured brokers.
func NewAdminClient(c KafkaConf) *kafka.Client {
	return &kafka.Client{Addr: kafka.TCP(c.Brokers...)}
}

// Lag returns the sum over partitions of end offset minus committed offset.
// Partitions the group never committed on are not counted. active is false
// when the group has no committed offset at all.
func (m *LagMonitor) Lag(ctx context.Context) (lag int64, active bool, err error) {
	meta, err := m.client.Metadata(ctx, &kafka.MetadataRequest{Topics: []string{m.topic}})
	if err != nil {
		return 0, false, fmt.Errorf("fetch metadata for %s: %w", m.topic, err)
	}

	var partitions []int
	for _, t := range meta.Topics {
		if t.Name != m.topic {
			continue
		}
		if t.Error != nil {
			return 0, false, fmt.Errorf("fetch metadata for %s: %w", m.topic, t.Error)
		}
		for _, p := range t.Partitions {
			partitions = append(partitions, p.ID)
		}
	}
	if len(partitions) == 0 {
		return 0, false, nil
	}

	committed, err := m.client.OffsetFetch(ctx, &kafka.OffsetFetchRequest{
		GroupID: m.groupID,
		Topics:  map[string][]int{m.topic: partitions},
	})
	if err != nil {
		return 0, false, fmt.Errorf("fetch offsets of group %s: %w", m.groupID, err)
	}
	if committed.Error != nil {
		return 0, false, fmt.Errorf("fetch offsets of group %s: %w", m.groupID, committed.Error)
	}

	requests := make([]kafka.OffsetRequest, 0, len(partitions))
	for _, p := range partitions {
		requests = append(requests, kafka.LastOffsetOf(p))
	}
	ends, err := m.client.ListOffsets(ctx, &kafka.ListOffsetsRequest{
		Topics: map[string][]kafka.OffsetRequest{m.topic: requests},
	})
	if err != nil {
		return 0, false, fmt.Errorf("list end offsets of %s: %w", m.topic, err)
	}

	endOf := make(map[int]int64, len(partitions))
	for _, p := range ends.Topics[m.topic] {
		if p.Error == nil {
			endOf[p.Partition] = p.LastOffset
		}
	}

	for _, p := range committed.Topics[m.topic] {
		if p.Error != nil || p.CommittedOffset < 0 {
			continue
		}
		active = true
		if end, ok := endOf[p.Partition]; ok {
			lag += max(0, end-p.CommittedOffset)
		}
	}
	return lag, active, nil
}
