package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdmin struct {
	partitions []int
	committed  map[int]int64
	ends       map[int]int64
	metaErr    error
}

func (f *fakeAdmin) Metadata(_ context.Context, req *kafka.MetadataRequest) (*kafka.MetadataResponse, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	topic := kafka.Topic{Name: req.Topics[0]}
	for _, id := range f.partitions {
		topic.Partitions = append(topic.Partitions, kafka.Partition{Topic: topic.Name, ID: id})
	}
	return &kafka.MetadataResponse{Topics: []kafka.Topic{topic}}, nil
}

func (f *fakeAdmin) OffsetFetch(_ context.Context, req *kafka.OffsetFetchRequest) (*kafka.OffsetFetchResponse, error) {
	resp := &kafka.OffsetFetchResponse{Topics: map[string][]kafka.OffsetFetchPartition{}}
	for topic, partitions := range req.Topics {
		for _, p := range partitions {
			offset, ok := f.committed[p]
			if !ok {
				offset = -1
			}
			resp.Topics[topic] = append(resp.Topics[topic], kafka.OffsetFetchPartition{Partition: p, CommittedOffset: offset})
		}
	}
	return resp, nil
}

func (f *fakeAdmin) ListOffsets(_ context.Context, req *kafka.ListOffsetsRequest) (*kafka.ListOffsetsResponse, error) {
	resp := &kafka.ListOffsetsResponse{Topics: map[string][]kafka.PartitionOffsets{}}
	for topic, requests := range req.Topics {
		for _, r := range requests {
			resp.Topics[topic] = append(resp.Topics[topic], kafka.PartitionOffsets{Partition: r.Partition, LastOffset: f.ends[r.Partition]})
		}
	}
	return resp, nil
}

func TestLagMonitor_SumsCommittedPartitions(t *testing.T) {
	admin := &fakeAdmin{
		partitions: []int{0, 1, 2},
		committed:  map[int]int64{0: 90, 1: 200},
		ends:       map[int]int64{0: 100, 1: 200, 2: 5000},
	}

	lag, active, err := NewLagMonitor(admin, ClickEventsTopic, "analytics-consumer-group").Lag(context.Background())

	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, int64(10), lag, "partition 2 has no committed offset and is not counted")
}

func TestLagMonitor_InactiveGroup(t *testing.T) {
	admin := &fakeAdmin{partitions: []int{0}, ends: map[int]int64{0: 42}}

	lag, active, err := NewLagMonitor(admin, ClickEventsTopic, "g").Lag(context.Background())

	require.NoError(t, err)
	assert.False(t, active)
	assert.Zero(t, lag)
}

func TestLagMonitor_MetadataError(t *testing.T) {
	admin := &fakeAdmin{metaErr: errors.New("broker unreachable")}

	_, _, err := NewLagMonitor(admin, ClickEventsTopic, "g").Lag(context.Background())

	assert.ErrorContains(t, err, "broker unreachable")
}
