package storage

import (
	"fmt"

	"rural-health-assistant/internal/config"
)

// New selects the storage driver from configuration.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "file":
		return NewFileStore(cfg.DataDir)
	case "postgres":
		return NewPostgresStore(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
