package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// Code delivery backends. Console prints codes to stdout and is for
// development only.
const (
	NotifierDiscard = "discard"
	NotifierFile    = "file"
	NotifierConsole = "console"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	HashSecret   string `env:"HASH_SECRET"`
	SeedFile     string `env:"SEED_FILE"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"text"`
	Notifier     string `env:"NOTIFIER" envDefault:"discard"`
	NotifyFile   string `env:"NOTIFY_FILE"`

	CodeTTL         time.Duration `env:"CODE_TTL" envDefault:"10m"`
	BallotTTL       time.Duration `env:"BALLOT_TTL" envDefault:"0s"`
	MaxCodeAttempts int           `env:"MAX_CODE_ATTEMPTS" envDefault:"5"`
	ChallengeLimit  int           `env:"CHALLENGE_LIMIT" envDefault:"5"`
	ChallengeWindow time.Duration `env:"CHALLENGE_WINDOW" envDefault:"1h"`
	OpTimeout       time.Duration `env:"OP_TIMEOUT" envDefault:"5s"`
	AuditBuffer     int           `env:"AUDIT_BUFFER" envDefault:"256"`
}

// ParseFlags reads the environment, then lets CLI flags override it
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("evote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "JSON fixtures to load at startup")
	fs.StringVar(&cfg.Notifier, "notifier", cfg.Notifier, "Code delivery: discard, file or console (dev only)")
	fs.StringVar(&cfg.NotifyFile, "notify-file", cfg.NotifyFile, "Output path for the file notifier")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.HashSecret, "hash-secret", cfg.HashSecret, "HMAC secret for codes and tokens (prefer env)")

	// Credential policy
	fs.DurationVar(&cfg.CodeTTL, "code-ttl", cfg.CodeTTL, "One-time code lifetime")
	fs.DurationVar(&cfg.BallotTTL, "ballot-ttl", cfg.BallotTTL, "Ballot token lifetime (0 = no expiry)")
	fs.IntVar(&cfg.MaxCodeAttempts, "max-attempts", cfg.MaxCodeAttempts, "Wrong codes allowed per challenge")
	fs.IntVar(&cfg.ChallengeLimit, "challenge-limit", cfg.ChallengeLimit, "Challenges per voter per window")
	fs.DurationVar(&cfg.ChallengeWindow, "challenge-window", cfg.ChallengeWindow, "Challenge rate limit window")
	fs.DurationVar(&cfg.OpTimeout, "op-timeout", cfg.OpTimeout, "Timeout for a single store operation")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != DatabaseSQLite && c.DatabaseType != DatabasePostgres {
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.HashSecret == "" {
		return errors.New("HASH_SECRET required")
	}

	switch c.Notifier {
	case NotifierDiscard, NotifierConsole:
	case NotifierFile:
		if c.NotifyFile == "" {
			return errors.New("NOTIFY_FILE required for the file notifier")
		}
	default:
		return fmt.Errorf("unsupported notifier %q", c.Notifier)
	}

	if c.CodeTTL <= 0 {
		return errors.New("code TTL must be positive")
	}
	if c.BallotTTL < 0 {
		return errors.New("ballot TTL cannot be negative")
	}
	if c.MaxCodeAttempts < 1 {
		return errors.New("max code attempts must be at least 1")
	}
	if c.ChallengeLimit < 1 || c.ChallengeWindow <= 0 {
		return errors.New("challenge limit and window must be positive")
	}
	if c.OpTimeout <= 0 {
		return errors.New("op timeout must be positive")
	}
	return nil
}
