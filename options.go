// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventlistener

// eventOptions holds configuration options for Event creation.
type eventOptions struct {
	logger         Logger
	spinLimit      int
	metricsEnabled bool
}

// Option configures an Event instance.
type Option interface {
	applyEvent(*eventOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyEventFunc func(*eventOptions) error
}

func (o *optionImpl) applyEvent(opts *eventOptions) error {
	return o.applyEventFunc(opts)
}

// WithLogger configures the Logger used for this Event's diagnostics.
// Defaults to a no-op logger.
func WithLogger(logger Logger) Option {
	return &optionImpl{func(opts *eventOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithSpinLimit overrides the number of failed CAS observations the spin
// mutex's slow path tolerates before giving up and deferring to the intake
// queue. Defaults to 100.
func WithSpinLimit(n int) Option {
	return &optionImpl{func(opts *eventOptions) error {
		opts.spinLimit = n
		return nil
	}}
}

// WithMetrics enables atomic counters (contended acquisitions, drained
// operation counts, max drain batch size) accessible via Event.Metrics.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *eventOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// resolveEventOptions applies Option instances to eventOptions.
func resolveEventOptions(opts []Option) (*eventOptions, error) {
	cfg := &eventOptions{
		logger:    NewNoOpLogger(),
		spinLimit: defaultSpinLimit,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyEvent(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
