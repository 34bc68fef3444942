package formsession

import (
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formstate/pkg/render"
)

const (
	DefaultRoutePath   = "/"
	DefaultTTL         = 30 * time.Minute
	DefaultCapacity    = 1024
	DefaultMaxBodySize = 1 << 20
)

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath   string
	TTL         time.Duration
	Capacity    int
	MaxBodySize int64
	Guard       GuardFunc

	Logger     *logrus.Logger
	Registerer prometheus.Registerer
	Submission []render.SubmissionOption
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:   DefaultRoutePath,
		TTL:         DefaultTTL,
		Capacity:    DefaultCapacity,
		MaxBodySize: DefaultMaxBodySize,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = DefaultRoutePath
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	if opts.Submission != nil {
		opts.Submission = append([]render.SubmissionOption{}, opts.Submission...)
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

// WithTTL sets how long a session survives without activity.
func WithTTL(ttl time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TTL = ttl
	}
}

// WithCapacity caps the number of live sessions; the least recently used
// session is dropped when the cap is reached.
func WithCapacity(capacity int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Capacity = capacity
	}
}

func WithMaxBodySize(size int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodySize = size
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *logrus.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithRegisterer enables Prometheus metrics registered on reg.
func WithRegisterer(reg prometheus.Registerer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Registerer = reg
	}
}

// WithSubmissionOptions forwards options to render.BuildSubmission when a
// session is submitted.
func WithSubmissionOptions(opts ...render.SubmissionOption) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Submission = append(o.Submission, opts...)
	}
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
