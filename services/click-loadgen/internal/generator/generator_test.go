package generator

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkhub/internal/shared/events"
)

type collector struct {
	mu     sync.Mutex
	events []events.ClickEvent
}

func (c *collector) Publish(_ context.Context, ev events.ClickEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func TestGenerator_Run(t *testing.T) {
	c := &collector{}
	g := New(c, Conf{Total: 200, ShortCodes: 5, DuplicateRatio: 0.2, Seed: 42})

	stats, err := g.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 200, stats.Sent)
	require.Len(t, c.events, 200)

	unique := lo.UniqBy(c.events, func(ev events.ClickEvent) uuid.UUID { return ev.EventID })
	assert.Equal(t, 200-stats.Duplicates, len(unique))
	assert.Positive(t, stats.Duplicates)

	for _, ev := range c.events {
		assert.NoError(t, ev.Validate())
		assert.Regexp(t, `^lg0000[0-4]$`, ev.ShortCode)
	}
}

func TestGenerator_NoDuplicates(t *testing.T) {
	c := &collector{}
	g := New(c, Conf{Total: 50, ShortCodes: 3, Seed: 7})

	stats, err := g.Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, stats.Duplicates)
	assert.Len(t, lo.UniqBy(c.events, func(ev events.ClickEvent) uuid.UUID { return ev.EventID }), 50)
}

func TestGenerator_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := New(&collector{}, Conf{Total: 10, Rate: 1, Seed: 1})

	stats, err := g.Run(ctx)

	assert.Error(t, err)
	assert.Zero(t, stats.Sent)
}
