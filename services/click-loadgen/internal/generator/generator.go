package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/samber/lo"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/time/rate"

	"linkhub/internal/shared/events"
)

// Publisher accepts a click without blocking.
type Publisher interface {
	Publish(ctx context.Context, ev events.ClickEvent)
}

// Conf shapes the generated traffic.
type Conf struct {
	Total          int     `json:",default=10000"`
	Rate           float64 `json:",default=500"`
	ShortCodes     int     `json:",default=50"`
	DuplicateRatio float64 `json:",default=0.01,range=[0:1]"`
	Seed           uint64  `json:",optional"`
}

// Stats is what a run produced.
type Stats struct {
	Sent       int
	Duplicates int
	Elapsed    time.Duration
}

var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (iPad; CPU OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Mobile Safari/537.36",
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		"curl/8.7.1",
		"",
	}
	referrers = []string{
		"",
		"https://www.google.com/search?q=linkhub",
		"https://t.co/x1y2z3",
		"https://www.reddit.com/r/golang/",
		"https://chatgpt.com/",
		"https://news.ycombinator.com/",
	}
	ips = []string{
		"8.8.8.8",
		"81.2.69.142",
		"2001:4860:4860::8888",
		"192.168.1.10",
		"not-an-ip",
		"",
	}
)

// Generator emits synthetic clicks at a steady rate.
type Generator struct {
	publisher Publisher
	conf      Conf
	limiter   *rate.Limiter
	rnd       *rand.Rand
}

func New(publisher Publisher, c Conf) *Generator {
	if c.ShortCodes <= 0 {
		c.ShortCodes = 1
	}
	limit := rate.Inf
	if c.Rate > 0 {
		limit = rate.Limit(c.Rate)
	}
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		publisher: publisher,
		conf:      c,
		limiter:   rate.NewLimiter(limit, 1),
		rnd:       rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

// Run publishes Total clicks, or fewer if ctx ends first. A DuplicateRatio
// share of the clicks resend an earlier event with the same event id.
func (g *Generator) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	var (
		stats Stats
		last  *events.ClickEvent
	)

	for stats.Sent < g.conf.Total {
		if err := g.limiter.Wait(ctx); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}

		var ev events.ClickEvent
		if last != nil && g.rnd.Float64() < g.conf.DuplicateRatio {
			ev = *last
			stats.Duplicates++
		} else {
			ev = g.next()
			last = &ev
		}

		g.publisher.Publish(ctx, ev)
		stats.Sent++

		if stats.Sent%1000 == 0 {
			logx.Infow("load progress", logx.Field("sent", stats.Sent), logx.Field("total", g.conf.Total))
		}
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}

func (g *Generator) next() events.ClickEvent {
	code := g.rnd.IntN(g.conf.ShortCodes)
	return events.NewClickEvent(
		int64(code+1),
		fmt.Sprintf("lg%05d", code),
		lo.SampleBy(ips, g.rnd.IntN),
		lo.SampleBy(userAgents, g.rnd.IntN),
		lo.SampleBy(referrers, g.rnd.IntN),
	)
}
