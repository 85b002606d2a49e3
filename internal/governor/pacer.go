package governor

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer enforces a minimum spacing after marked calls. wait does not consume
// the token; mark does, so only marked calls delay the next one.
type pacer struct {
	lim   *rate.Limiter
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func newPacer(spacing time.Duration) *pacer {
	p := &pacer{now: time.Now, sleep: sleepCtx}
	if spacing > 0 {
		p.lim = rate.NewLimiter(rate.Every(spacing), 1)
	}
	return p
}

// wait blocks until a call is permitted and returns how long it waited.
func (p *pacer) wait(ctx context.Context) (time.Duration, error) {
	if p.lim == nil {
		return 0, nil
	}
	var waited time.Duration
	for {
		tokens := p.lim.TokensAt(p.now())
		if tokens >= 1 {
			return waited, nil
		}
		d := time.Duration((1 - tokens) / float64(p.lim.Limit()) * float64(time.Second))
		if d < time.Millisecond {
			d = time.Millisecond
		}
		if err := p.sleep(ctx, d); err != nil {
			return waited, err
		}
		waited += d
	}
}

// mark records a call, holding back the next one by the spacing.
func (p *pacer) mark() {
	if p.lim != nil {
		p.lim.AllowN(p.now(), 1)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
