package kizuna

import "go.uber.org/zap"

// config holds the construction-time settings of a World.
type config struct {
	logger          *zap.Logger
	initialCapacity int
}

// Option configures a World.
type Option func(*config)

// WithInitialCapacity pre-sizes the entity slot table. Choosing a suitable
// capacity avoids re-allocations while the world fills up.
func WithInitialCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.initialCapacity = n
		}
	}
}

// WithLogger sets the logger used for structural events such as archetype
// creation and cloning. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	}
}

func newConfig(opts []Option) config {
	c := config{
		logger:          zap.NewNop(),
		initialCapacity: 1024,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
