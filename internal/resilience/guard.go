package resilience

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the limiter cannot admit a call before the
// context deadline.
var ErrRateLimited = eris.New("rate limit wait exceeds deadline")

// GuardConfig enables the limiter and breaker. Zero values disable each.
type GuardConfig struct {
	RatePerSec       float64
	Burst            int
	BreakerThreshold int
	BreakerReset     time.Duration
	ShouldTrip       func(err error) bool
}

// Guard admits calls to an upstream. A nil Guard admits everything.
type Guard struct {
	limiter *rate.Limiter
	breaker *Breaker
}

// NewGuard builds a Guard, or returns nil when cfg enables nothing.
func NewGuard(name string, cfg GuardConfig) *Guard {
	g := &Guard{}
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	if cfg.BreakerThreshold > 0 {
		g.breaker = NewBreaker(BreakerConfig{
			FailureThreshold: cfg.BreakerThreshold,
			ResetTimeout:     cfg.BreakerReset,
			ShouldTrip:       cfg.ShouldTrip,
			OnStateChange: func(from, to BreakerState) {
				zap.L().Warn("circuit breaker state change",
					zap.String("upstream", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
	if g.limiter == nil && g.breaker == nil {
		return nil
	}
	return g
}

// Admit waits for the limiter and checks the breaker. On success the caller
// must hand the call's outcome to Done.
func (g *Guard) Admit(ctx context.Context) error {
	if g == nil {
		return nil
	}
	if g.breaker != nil {
		if err := g.breaker.Allow(); err != nil {
			return err
		}
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return eris.Wrap(ctx.Err(), "rate limiter wait")
			}
			return eris.Wrap(ErrRateLimited, err.Error())
		}
	}
	return nil
}

// Done records the outcome of an admitted call.
func (g *Guard) Done(err error) {
	if g == nil || g.breaker == nil {
		return
	}
	g.breaker.Record(err)
}

// BreakerState reports the breaker state, closed when no breaker is set.
func (g *Guard) BreakerState() BreakerState {
	if g == nil || g.breaker == nil {
		return BreakerClosed
	}
	return g.breaker.State()
}
