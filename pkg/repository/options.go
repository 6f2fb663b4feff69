package repository

import (
	"time"

	"github.com/google/uuid"
)

// Option configures a repository.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

func applyOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source used for stored timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the generator of client-side reservation IDs.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}
