package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/PabloGalante/myvfriend/internal/domain"
	"github.com/PabloGalante/myvfriend/internal/observability"
)

const (
	DefaultMaxAttempts = 3
	DefaultPause       = time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Deliverer sends replies through a domain.Sender with bounded retry.
type Deliverer struct {
	sender      domain.Sender
	maxAttempts int
	pause       time.Duration
	sleep       SleepFunc
}

type Option func(*Deliverer)

// WithSleep replaces the pause implementation. Tests use it to avoid real
// waiting and to count pauses.
func WithSleep(fn SleepFunc) Option {
	return func(d *Deliverer) { d.sleep = fn }
}

func WithPolicy(maxAttempts int, pause time.Duration) Option {
	return func(d *Deliverer) {
		if maxAttempts > 0 {
			d.maxAttempts = maxAttempts
		}
		if pause >= 0 {
			d.pause = pause
		}
	}
}

func NewDeliverer(sender domain.Sender, opts ...Option) *Deliverer {
	d := &Deliverer{
		sender:      sender,
		maxAttempts: DefaultMaxAttempts,
		pause:       DefaultPause,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver tries to send text to dest up to maxAttempts times, pausing
// between failed attempts. Unauthorized and rejected errors stop the loop
// at once.
// It reports true only if one attempt succeeded.
func (d *Deliverer) Deliver(ctx context.Context, dest domain.Destination, text string) bool {
	log := observability.LoggerFromContext(ctx).With(
		"destination_kind", dest.Kind.String(),
	)

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.sender.Send(ctx, dest, text)
		if err == nil {
			if attempt > 1 {
				log.Infow("delivery succeeded after retry", "attempt", attempt)
			}
			return true
		}

		if permanent(err) {
			log.Errorw("delivery rejected, not retrying", "attempt", attempt, "error", err)
			return false
		}

		log.Warnw("delivery attempt failed", "attempt", attempt, "max_attempts", d.maxAttempts, "error", err)

		if attempt == d.maxAttempts {
			break
		}
		if err := d.sleep(ctx, d.pause); err != nil {
			log.Warnw("delivery retry interrupted", "error", err)
			return false
		}
	}

	log.Errorw("delivery failed", "error", domain.ErrDeliveryFailure, "attempts", d.maxAttempts)
	return false
}

func permanent(err error) bool {
	return errors.Is(err, domain.ErrDeliveryUnauthorized) || errors.Is(err, domain.ErrDeliveryRejected)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
