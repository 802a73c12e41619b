package materialize

import (
	"github.com/erraggy/reqgate/gateerrors"
	"github.com/erraggy/reqgate/logging"
	"github.com/erraggy/reqgate/model"
	"github.com/erraggy/reqgate/validation"
)

// DefaultMaxBodySize is the largest raw body accepted when no limit is
// configured (10 MiB).
const DefaultMaxBodySize int64 = 10 << 20

// Option configures a Materializer.
type Option func(*config) error

type config struct {
	cache            *validation.Cache
	cacheCapacity    int
	capacitySet      bool
	registry         *model.Registry
	logger           logging.Logger
	maxBodySize      int64
	normalizeUnicode bool
}

func defaultConfig() *config {
	return &config{
		cacheCapacity: validation.DefaultCapacity,
		registry:      model.Default(),
		logger:        logging.NopLogger{},
		maxBodySize:   DefaultMaxBodySize,
	}
}

// WithCache shares an existing cache instead of creating one.
// It cannot be combined with WithCacheCapacity.
func WithCache(c *validation.Cache) Option {
	return func(cfg *config) error {
		if c == nil {
			return &gateerrors.ConfigError{Option: "WithCache", Message: "cache cannot be nil"}
		}
		cfg.cache = c
		return nil
	}
}

// WithCacheCapacity sets the capacity of the cache the Materializer creates.
func WithCacheCapacity(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return &gateerrors.ConfigError{
				Option:  "WithCacheCapacity",
				Value:   n,
				Message: "cache capacity must be positive",
			}
		}
		cfg.cacheCapacity = n
		cfg.capacitySet = true
		return nil
	}
}

// WithRegistry sets the registry used by the generic Object function.
// The default is model.Default().
func WithRegistry(r *model.Registry) Option {
	return func(cfg *config) error {
		if r == nil {
			return &gateerrors.ConfigError{Option: "WithRegistry", Message: "registry cannot be nil"}
		}
		cfg.registry = r
		return nil
	}
}

// WithLogger sets the logger. Rejected bodies are logged at debug level by
// model and issue count; body contents are never logged.
func WithLogger(l logging.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logging.OrNop(l)
		return nil
	}
}

// WithMaxBodySize limits the size in bytes of raw bodies. Zero disables the
// limit.
func WithMaxBodySize(n int64) Option {
	return func(cfg *config) error {
		if n < 0 {
			return &gateerrors.ConfigError{
				Option:  "WithMaxBodySize",
				Value:   n,
				Message: "max body size cannot be negative",
			}
		}
		cfg.maxBodySize = n
		return nil
	}
}

// WithNormalizeUnicode converts every string value and object key to
// Unicode NFC before validation, so that visually identical input compares
// and measures the same.
func WithNormalizeUnicode(enabled bool) Option {
	return func(cfg *config) error {
		cfg.normalizeUnicode = enabled
		return nil
	}
}
