package service

import (
	"time"

	"go.uber.org/zap"
)

// OversellPolicy decides what happens when a sale is finalized for more
// units than are on hand.
type OversellPolicy int

const (
	// ClampOversell floors the stock level at zero and lets the sale through
	ClampOversell OversellPolicy = iota
	// RejectOversell fails the finalize with domain.ErrInsufficientStock
	RejectOversell
)

func (p OversellPolicy) String() string {
	if p == RejectOversell {
		return "reject"
	}
	return "clamp"
}

type options struct {
	now    func() time.Time
	loc    *time.Location
	policy OversellPolicy
	logger *zap.Logger
}

// Option configures a service
type Option func(*options)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone used for calendar queries (day, month)
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func WithOversellPolicy(policy OversellPolicy) Option {
	return func(o *options) { o.policy = policy }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		loc:    time.Local,
		policy: ClampOversell,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
