package pollable

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	defaultInitialInterval = time.Second
	defaultMaxInterval     = 30 * time.Second
	defaultFactor          = 2.0
	defaultMaxElapsed      = 5 * time.Minute
)

// ErrTimeout is returned when the elapsed budget runs out before the
// condition is met. The last fetched value is returned alongside it.
var ErrTimeout = errors.New("pollable: condition not met before timeout")

// Options configures the polling schedule. The zero value polls with an
// exponential backoff from 1s to 30s for a total of 5 minutes.
type Options struct {
	// InitialInterval is the wait after the first unsuccessful poll.
	InitialInterval time.Duration
	// MaxInterval caps the wait between polls.
	MaxInterval time.Duration
	// Factor is the backoff multiplier.
	Factor float64
	// MaxElapsed bounds the total polling time. Zero uses the default;
	// a negative value disables the ceiling.
	MaxElapsed time.Duration
}

// ApplyDefaults fills in zero-value fields.
func (o *Options) ApplyDefaults() {
	if o.InitialInterval <= 0 {
		o.InitialInterval = defaultInitialInterval
	}
	if o.MaxInterval <= 0 {
		o.MaxInterval = defaultMaxInterval
	}
	if o.Factor <= 0 {
		o.Factor = defaultFactor
	}
	if o.MaxElapsed == 0 {
		o.MaxElapsed = defaultMaxElapsed
	}
}

// Until repeatedly calls fetch until done returns true for the fetched
// value. Between polls it waits with exponential backoff. It returns the
// first value satisfying done; a fetch error is returned as-is, and
// ErrTimeout is returned with the last fetched value when the elapsed
// budget runs out first.
func Until[T any](ctx context.Context, opts Options, fetch func(context.Context) (T, error), done func(T) bool) (T, error) {
	opts.ApplyDefaults()

	var last T
	start := time.Now()
	for poll := 0; ; poll++ {
		v, err := fetch(ctx)
		if err != nil {
			return last, err
		}
		last = v
		if done(v) {
			return v, nil
		}

		wait := opts.interval(poll)
		if opts.MaxElapsed > 0 && time.Since(start)+wait > opts.MaxElapsed {
			return last, ErrTimeout
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last, ctx.Err()
		case <-timer.C:
		}
	}
}

// interval computes the wait after the given poll (0-based).
func (o *Options) interval(poll int) time.Duration {
	d := float64(o.InitialInterval) * math.Pow(o.Factor, float64(poll))
	if d > float64(o.MaxInterval) {
		d = float64(o.MaxInterval)
	}
	return time.Duration(d)
}
