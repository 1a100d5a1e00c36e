package galileo

import (
	"log/slog"

	"github.com/siddheshzz/galileo/cache"
	"github.com/siddheshzz/galileo/fetch"
)

// MapOption configures a Map at creation.
type MapOption func(*mapOptions)

type mapOptions struct {
	budget        int
	workers       int
	messenger     Messenger
	logger        *slog.Logger
	fallbackDepth int
	fetchOpts     []fetch.Option
}

func defaultMapOptions() mapOptions {
	return mapOptions{
		budget:        cache.DefaultBudget,
		messenger:     nopMessenger{},
		fallbackDepth: DefaultFallbackDepth,
	}
}

// WithCacheBudget bounds the tile cache to n bytes of primitive weight.
// Zero or less removes the bound.
func WithCacheBudget(n int) MapOption {
	return func(o *mapOptions) { o.budget = n }
}

// WithWorkers sets the size of the shared worker pool. Zero or less
// means one worker per CPU.
func WithWorkers(n int) MapOption {
	return func(o *mapOptions) { o.workers = n }
}

// WithMessenger installs the host callback that asks for a redraw when
// new tiles become drawable. The default discards the signal.
func WithMessenger(msg Messenger) MapOption {
	return func(o *mapOptions) {
		if msg == nil {
			msg = nopMessenger{}
		}
		o.messenger = msg
	}
}

// WithLogger sets the map's logger. The default is the package logger
// at the time the map is created; see SetLogger.
func WithLogger(l *slog.Logger) MapOption {
	return func(o *mapOptions) { o.logger = l }
}

// WithFallbackDepth bounds how many zoom levels up the composer looks
// for a cached ancestor of a missing tile. Zero or less restores
// DefaultFallbackDepth.
func WithFallbackDepth(n int) MapOption {
	return func(o *mapOptions) { o.fallbackDepth = n }
}

// WithFetchOptions appends options applied to every layer's fetch
// coordinator, after the map's own logger and notify wiring.
func WithFetchOptions(opts ...fetch.Option) MapOption {
	return func(o *mapOptions) { o.fetchOpts = append(o.fetchOpts, opts...) }
}
