package events

import (
	"context"
	"errors"
	"log/slog"

	"rolodex/pkg/platform/circuit"
)

// ErrPublisherUnavailable is returned while the breaker is open.
var ErrPublisherUnavailable = errors.New("event publisher unavailable")

// Guarded stops calling a failing publisher until a probe succeeds, so a
// broker outage costs one timeout per cooldown instead of one per request.
type Guarded struct {
	next    Publisher
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(next Publisher, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	return &Guarded{next: next, breaker: breaker, logger: logger}
}

func (g *Guarded) Publish(ctx context.Context, event Event) error {
	if !g.breaker.Allow() {
		return ErrPublisherUnavailable
	}

	if err := g.next.Publish(ctx, event); err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "event publishing suspended", "breaker", g.breaker.Name(), "error", err)
		}
		return err
	}

	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "event publishing resumed", "breaker", g.breaker.Name())
	}
	return nil
}
