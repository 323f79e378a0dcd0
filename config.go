package gop

import "math"

// config carries the tunables of an ObjectPool. The zero observer is a
// no-op and the default maximum size is the full uint32 handle space.
type config struct {
	obs     Observer
	maxSize uint32
}

func defaultConfig() config {
	return config{
		obs:     NopObserver{},
		maxSize: math.MaxUint32,
	}
}

// Option customizes an ObjectPool at construction time.
type Option func(*config)

// WithObserver routes the pool's accounting and fault notifications to
// obs instead of discarding them.
func WithObserver(obs Observer) Option {
	return func(c *config) {
		if obs != nil {
			c.obs = obs
		}
	}
}

// WithMaxSize lowers the pool's maximum slot count below the uint32
// handle space. Constructing past it fails with ErrCapacityOverflow.
func WithMaxSize(n uint32) Option {
	return func(c *config) {
		c.maxSize = n
	}
}
