package storage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
)

// Options selects and configures a store.
type Options struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
	CSVPath     string
}

// Open creates the configured store.
func Open(ctx context.Context, opts Options, logger *logrus.Logger) (Store, error) {
	if logger == nil {
		logger = logrus.New()
	}
	log := logger.WithField("driver", opts.Driver)

	var (
		store Store
		err   error
	)
	switch opts.Driver {
	case DriverMemory, "":
		store = NewMemoryStore()
	case DriverSQLite:
		store, err = OpenSQLite(ctx, opts.SQLitePath, logger)
		log = log.WithField("path", opts.SQLitePath)
	case DriverCSV:
		store, err = OpenCSV(opts.CSVPath)
		log = log.WithField("path", opts.CSVPath)
	case DriverPostgres:
		store, err = ConnectPostgres(ctx, opts.DatabaseURL, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", opts.Driver, err)
	}

	log.Info("Submission store ready")
	return store, nil
}
