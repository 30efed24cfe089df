package loader

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the automatic refresh period.
const DefaultInterval = 60 * time.Second

// Poller fetches once immediately and then on every tick or manual trigger.
// Each fetch runs on its own goroutine; overlapping fetches resolve
// independently and the receiver orders them by sequence number.
type Poller struct {
	loader   *Loader
	interval time.Duration
	deliver  func(Result)
	trigger  chan struct{}
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewPoller creates a Poller that hands every result to deliver.
func NewPoller(l *Loader, interval time.Duration, deliver func(Result), logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Poller{
		loader:   l,
		interval: interval,
		deliver:  deliver,
		trigger:  make(chan struct{}, 1),
		logger:   logger,
	}
}

// Trigger requests an immediate fetch. Requests made while one is already
// queued are coalesced.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled, then waits for in-flight fetches.
func (p *Poller) Run(ctx context.Context) error {
	defer p.wg.Wait()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("snapshot polling started", "endpoint", p.loader.Endpoint(), "interval", p.interval)
	p.spawn(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("snapshot polling stopped")
			return nil
		case <-ticker.C:
			p.spawn(ctx)
		case <-p.trigger:
			p.spawn(ctx)
		}
	}
}

func (p *Poller) spawn(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		res := p.loader.Fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		p.deliver(res)
	}()
}
