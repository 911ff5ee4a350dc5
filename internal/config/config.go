package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string

	AdminID           int64
	AdminPasswordHash string
	TokenSecret       string

	MaxActiveOrders int
	MinBudget       float64
	MaxFileSize     int64
	MaxDescription  int

	UploadDir    string
	DeliveredDir string

	RetentionDays     int
	SweepInterval     time.Duration
	SweepInitialDelay time.Duration

	BackupSource string
	BackupDir    string
	BackupKeep   int

	MerchantLogin     string
	MerchantPassword1 string
	MerchantPassword2 string
	PaymentTestMode   bool

	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress        = ":8080"
	defaultMaxActiveOrders   = 3
	defaultMinBudget         = 200
	defaultMaxFileSize       = 20 << 20
	defaultMaxDescription    = 500
	defaultUploadDir         = "uploads"
	defaultDeliveredDir      = "completed_work"
	defaultRetentionDays     = 30
	defaultSweepInterval     = 24 * time.Hour
	defaultSweepInitialDelay = 10 * time.Second
	defaultBackupDir         = "backups"
	defaultBackupKeep        = 7
	defaultShutdownTimeout   = 10 * time.Second
)

// Load parses configuration from .env file, environment variables and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		AdminID:           getInt64(lookup, "ADMIN_ID", 0),
		AdminPasswordHash: getString(lookup, "ADMIN_PASSWORD_HASH", ""),
		TokenSecret:       getString(lookup, "TOKEN_SECRET", ""),
		MaxActiveOrders:   getInt(lookup, "MAX_ACTIVE_ORDERS", defaultMaxActiveOrders),
		MinBudget:         getFloat(lookup, "MIN_BUDGET", defaultMinBudget),
		MaxFileSize:       getInt64(lookup, "MAX_FILE_SIZE", defaultMaxFileSize),
		MaxDescription:    getInt(lookup, "MAX_DESCRIPTION_LENGTH", defaultMaxDescription),
		UploadDir:         getString(lookup, "UPLOAD_DIR", defaultUploadDir),
		DeliveredDir:      getString(lookup, "DELIVERED_DIR", defaultDeliveredDir),
		RetentionDays:     getInt(lookup, "RETENTION_DAYS", defaultRetentionDays),
		SweepInterval:     getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		SweepInitialDelay: getDuration(lookup, "SWEEP_INITIAL_DELAY", defaultSweepInitialDelay),
		BackupSource:      getString(lookup, "BACKUP_SOURCE", ""),
		BackupDir:         getString(lookup, "BACKUP_DIR", defaultBackupDir),
		BackupKeep:        getInt(lookup, "BACKUP_KEEP", defaultBackupKeep),
		MerchantLogin:     getString(lookup, "MERCHANT_LOGIN", ""),
		MerchantPassword1: getString(lookup, "MERCHANT_PASSWORD1", ""),
		MerchantPassword2: getString(lookup, "MERCHANT_PASSWORD2", ""),
		PaymentTestMode:   getString(lookup, "PAYMENT_TEST_MODE", "") == "1",
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("orderdesk", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		sweepIntervalStr   = cfg.SweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "Root folder for submitted attachments")
	fs.StringVar(&cfg.DeliveredDir, "delivered", cfg.DeliveredDir, "Root folder for delivered work")
	fs.IntVar(&cfg.MaxActiveOrders, "max-active", cfg.MaxActiveOrders, "Maximum simultaneous active orders per requester")
	fs.IntVar(&cfg.RetentionDays, "retention-days", cfg.RetentionDays, "Days delivered files remain downloadable")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between retention sweeps")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read token secret file: %w", err)
		}
		cfg.TokenSecret = string(content)
	}

	if cfg.MaxActiveOrders <= 0 {
		cfg.MaxActiveOrders = defaultMaxActiveOrders
	}

	if cfg.MinBudget <= 0 {
		cfg.MinBudget = defaultMinBudget
	}

	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}

	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = defaultRetentionDays
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.BackupKeep <= 0 {
		cfg.BackupKeep = defaultBackupKeep
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.AdminID == 0 {
		return nil, fmt.Errorf("administrator identifier must be provided")
	}

	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("token secret must be provided")
	}

	return cfg, nil
}

// RetentionWindow returns the delivered-file availability window as a duration.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getInt64(lookup envLookup, key string, def int64) int64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
