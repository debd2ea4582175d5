package workspace

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/kv"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/resilience"
)

const activeTopicKey = "active_topic"

// Preferences remembers the active topic in a key-value store. Store calls
// go through a circuit breaker; while the store is failing, values are kept
// in memory instead.
type Preferences struct {
	store    kv.Store
	fallback *kv.Memory
	breaker  *resilience.Breaker
	logger   *logging.Logger
}

// NewPreferences wraps store. logger may be nil.
func NewPreferences(store kv.Store, logger *logging.Logger) *Preferences {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("preferences")

	return &Preferences{
		store:    store,
		fallback: kv.NewMemory(),
		logger:   logger,
		breaker: resilience.New("preferences", resilience.Settings{
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, kv.ErrNotFound)
			},
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

// ActiveTopic returns the remembered topic, if any
func (p *Preferences) ActiveTopic(ctx context.Context) (topic.Topic, bool) {
	value, err := resilience.Call(p.breaker, func() (string, error) {
		return p.store.Get(ctx, activeTopicKey)
	})
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		p.logger.Warn("preference store unavailable, using memory", zap.Error(err))
		value, err = p.fallback.Get(ctx, activeTopicKey)
	}
	if err != nil {
		return "", false
	}

	t, err := topic.Parse(value)
	if err != nil {
		p.logger.Warn("ignoring stored active topic", zap.String("value", value), zap.Error(err))
		return "", false
	}
	return t, true
}

// SetActiveTopic remembers t. A failing store degrades to memory and the
// error is returned for logging only.
func (p *Preferences) SetActiveTopic(ctx context.Context, t topic.Topic) error {
	_ = p.fallback.Set(ctx, activeTopicKey, t.String())
	return p.breaker.Execute(func() error {
		return p.store.Set(ctx, activeTopicKey, t.String())
	})
}

// Breaker exposes the breaker state for health reporting
func (p *Preferences) Breaker() *resilience.Breaker {
	return p.breaker
}

// Close closes the underlying store
func (p *Preferences) Close() error {
	return p.store.Close()
}
