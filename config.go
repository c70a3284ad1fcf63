package specscribe

import (
	"fmt"

	"github.com/gobeaver/beaver-kit/config"

	"github.com/gobeaver/specscribe/intake"
)

type Config struct {
	// Staging driver to use (memory, local)
	Driver string `env:"SPECSCRIBE_DRIVER,default:memory"`

	// Local driver configuration
	LocalBasePath string `env:"SPECSCRIBE_LOCAL_BASE_PATH,default:./staging"`

	// Memory driver configuration (0 = unlimited)
	MemoryMaxSize int64 `env:"SPECSCRIBE_MEMORY_MAX_SIZE,default:0"`

	// HTTP server configuration
	HTTPHost    string `env:"SPECSCRIBE_HTTP_HOST,default:0.0.0.0"`
	HTTPPort    int    `env:"SPECSCRIBE_HTTP_PORT,default:8000"`
	CORSOrigins string `env:"SPECSCRIBE_CORS_ORIGINS,default:*"` // comma-separated

	// Intake policies per document kind. Empty accepted types keep the
	// built-in list for that kind.
	JobSpecMaxFileSize        int64  `env:"SPECSCRIBE_JOB_SPEC_MAX_FILE_SIZE,default:5242880"`
	JobSpecAcceptedTypes      string `env:"SPECSCRIBE_JOB_SPEC_ACCEPTED_TYPES"` // comma-separated
	CVMaxFileSize             int64  `env:"SPECSCRIBE_CV_MAX_FILE_SIZE,default:5242880"`
	CVAcceptedTypes           string `env:"SPECSCRIBE_CV_ACCEPTED_TYPES"` // comma-separated
	InterviewDocMaxFileSize   int64  `env:"SPECSCRIBE_INTERVIEW_DOC_MAX_FILE_SIZE,default:5242880"`
	InterviewDocAcceptedTypes string `env:"SPECSCRIBE_INTERVIEW_DOC_ACCEPTED_TYPES"` // comma-separated

	// Fingerprint algorithm for staged documents (xxhash, sha256, crc32)
	ChecksumAlgorithm string `env:"SPECSCRIBE_CHECKSUM_ALGORITHM,default:xxhash"`

	// Log staging activity through a driver watch
	WatchStaging bool `env:"SPECSCRIBE_WATCH_STAGING,default:true"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// Policy builds the intake policy for kind, starting from the kind's
// built-in policy and applying any configured overrides. A zero size keeps
// the built-in limit; a negative one is kept so validation can reject it.
func (c *Config) Policy(kind DocumentKind) intake.Policy {
	var (
		maxSize  int64
		accepted string
	)
	switch kind {
	case KindJobSpec:
		maxSize, accepted = c.JobSpecMaxFileSize, c.JobSpecAcceptedTypes
	case KindCV:
		maxSize, accepted = c.CVMaxFileSize, c.CVAcceptedTypes
	case KindInterviewDoc:
		maxSize, accepted = c.InterviewDocMaxFileSize, c.InterviewDocAcceptedTypes
	}

	b := intake.From(kind.DefaultPolicy())
	if maxSize != 0 {
		b.MaxSize(maxSize)
	}
	if specs := intake.ParseSpecifiers(accepted); len(specs) > 0 {
		b.Only(specs...)
	}
	return b.Build()
}
