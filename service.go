package specscribe

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gobeaver/beaver-kit/config"
)

// Global instance
var (
	defaultStaging *StagingArea
	defaultOnce    sync.Once
	defaultErr     error
)

// Builder provides a way to create staging areas with custom env prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global staging area using the builder's prefix
func (b *Builder) Init() error {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a new staging area using the builder's prefix
func (b *Builder) New() (*StagingArea, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return New(cfg)
}

// Init initializes the global staging area
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultStaging, defaultErr = New(cfg)
	})

	return defaultErr
}

// New creates a staging area from config: the configured driver, wrapped
// with the per-kind intake policies.
func New(cfg *Config) (*StagingArea, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fs, err := CreateDriver(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	options := []StagingOption{WithChecksumAlgorithm(ChecksumAlgorithm(cfg.ChecksumAlgorithm))}
	for _, kind := range Kinds() {
		options = append(options, WithPolicy(kind, cfg.Policy(kind)))
	}

	return NewStagingArea(fs, options...), nil
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg.Driver == "" {
		return errors.New("driver is required")
	}

	switch cfg.Driver {
	case "memory":
	case "local":
		if cfg.LocalBasePath == "" {
			return errors.New("local base path is required for local driver")
		}
	default:
		return fmt.Errorf("unknown driver: %s", cfg.Driver)
	}

	if _, err := NewHasher(ChecksumAlgorithm(cfg.ChecksumAlgorithm)); err != nil {
		return err
	}

	for _, kind := range Kinds() {
		if err := cfg.Policy(kind).Check(); err != nil {
			return fmt.Errorf("%s policy: %w", kind, err)
		}
	}

	return nil
}

// Staging returns the global staging area
func Staging() *StagingArea {
	if defaultStaging == nil {
		_ = Init()
	}
	return defaultStaging
}

// Default returns the global instance, initializing if needed with error handling
func Default() (*StagingArea, error) {
	if defaultStaging == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultStaging, nil
}

// NewFromEnv creates a staging area from environment variables
func NewFromEnv() (*StagingArea, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// Reset clears the global instance (for testing)
func Reset() {
	defaultStaging = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}
