package optimistic

import "github.com/dmitrijs2005/gophsocial/internal/logging"

type options struct {
	name string
	log  logging.Logger
}

type Option func(*options)

// WithName labels busy failures and log lines, e.g. "like".
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{name: "mutation"}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = logging.OrNop(o.log)
	return o
}
