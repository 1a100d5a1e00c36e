package fetch

import (
	"log/slog"
	"time"
)

// Option configures a Coordinator during creation.
type Option func(*options)

type options struct {
	priority PriorityFunc
	notify   func(Event)
	logger   *slog.Logger
	attempts int
	timeout  time.Duration
	backoff  time.Duration
	cooldown time.Duration
}

func defaultOptions() options {
	return options{
		priority: DefaultPriority,
		logger:   slog.New(slog.DiscardHandler),
		attempts: 3,
		timeout:  10 * time.Second,
		backoff:  250 * time.Millisecond,
		cooldown: 15 * time.Second,
	}
}

// WithPriority replaces the queue ordering policy.
func WithPriority(p PriorityFunc) Option {
	return func(o *options) {
		if p != nil {
			o.priority = p
		}
	}
}

// WithNotify registers a callback for terminal transitions. The callback
// runs on pool workers and on the goroutine calling SetNeeded or Close;
// it must not call back into the coordinator.
func WithNotify(fn func(Event)) Option {
	return func(o *options) {
		o.notify = fn
	}
}

// WithLogger sets the coordinator's logger. Nil restores the default
// silent logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}

// WithAttempts sets how many times a fetch is tried before the request
// fails. Values below one count as one.
func WithAttempts(n int) Option {
	return func(o *options) {
		o.attempts = max(n, 1)
	}
}

// WithTimeout bounds a single fetch attempt. Zero or negative disables
// the per-attempt deadline; viewport cancellation still applies.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithBackoff sets the delay before the second fetch attempt. Each
// further attempt doubles it.
func WithBackoff(d time.Duration) Option {
	return func(o *options) {
		o.backoff = d
	}
}

// WithCooldown sets how long a terminally failed request stays
// ineligible for requeueing.
func WithCooldown(d time.Duration) Option {
	return func(o *options) {
		o.cooldown = d
	}
}
