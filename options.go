package freelist

import "log/slog"

type options struct {
	logger   *slog.Logger
	acquirer MemoryAcquirer
	observer Observer
}

func defaultOptions() options {
	return options{
		logger:   slog.New(slog.DiscardHandler),
		observer: NoopObserver{},
	}
}

// Option configures a FreeList.
type Option func(*options)

// WithLogger sets the structured logger. Chunk growth, chunk drops and
// compaction are logged at debug level. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}

// WithMemoryAcquirer routes every chunk allocation through acq. Each chunk
// reserves its slot array footprint before it is created and releases it
// when dropped.
func WithMemoryAcquirer(acq MemoryAcquirer) Option {
	return func(o *options) {
		o.acquirer = acq
	}
}

// WithObserver installs hooks that are called on growth, drop and
// compaction. A nil observer disables them.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs == nil {
			obs = NoopObserver{}
		}
		o.observer = obs
	}
}
