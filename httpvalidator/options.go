package httpvalidator

import (
	"github.com/erraggy/oasguard/media"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/security"
	"github.com/erraggy/oasguard/spec"
	"github.com/erraggy/oasguard/styles"
)

// config holds the validator's dependencies as assembled by options.
type config struct {
	styles     *styles.Registry
	media      *media.Registry
	security   *security.Registry
	logger     spec.Logger
	noticeSink func(Notice)
}

// defaultConfig returns the configuration used when no options are given.
func defaultConfig() config {
	return config{
		styles:   styles.NewRegistry(),
		media:    media.NewRegistry(),
		security: security.NewRegistry(),
		logger:   spec.NopLogger{},
	}
}

// Option configures a Validator.
type Option func(*config) error

// WithStyleRegistry replaces the parameter style registry. Use this to
// install custom style deserializers.
func WithStyleRegistry(r *styles.Registry) Option {
	return func(c *config) error {
		if r == nil {
			return &oaserrors.ConfigError{
				Option:  "WithStyleRegistry",
				Message: "registry cannot be nil",
			}
		}
		c.styles = r
		return nil
	}
}

// WithMediaRegistry replaces the media type registry. Use this to install
// deserializers for additional content types.
func WithMediaRegistry(r *media.Registry) Option {
	return func(c *config) error {
		if r == nil {
			return &oaserrors.ConfigError{
				Option:  "WithMediaRegistry",
				Message: "registry cannot be nil",
			}
		}
		c.media = r
		return nil
	}
}

// WithSecurityRegistry replaces the security scheme registry. Use this to
// install providers for custom scheme types or to override credential
// extraction.
func WithSecurityRegistry(r *security.Registry) Option {
	return func(c *config) error {
		if r == nil {
			return &oaserrors.ConfigError{
				Option:  "WithSecurityRegistry",
				Message: "registry cannot be nil",
			}
		}
		c.security = r
		return nil
	}
}

// WithLogger sets the logger for validator diagnostics. The default
// discards everything.
func WithLogger(l spec.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return &oaserrors.ConfigError{
				Option:  "WithLogger",
				Message: "logger cannot be nil",
			}
		}
		c.logger = l
		return nil
	}
}

// WithNoticeSink sets a callback invoked for every advisory notice as it
// is recorded, in addition to the notice appearing on the result. Useful
// for feeding deprecation observations into metrics.
func WithNoticeSink(fn func(Notice)) Option {
	return func(c *config) error {
		if fn == nil {
			return &oaserrors.ConfigError{
				Option:  "WithNoticeSink",
				Message: "sink cannot be nil",
			}
		}
		c.noticeSink = fn
		return nil
	}
}
