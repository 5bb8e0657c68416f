package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/catswitch/internal/cache"
	"github.com/jask/catswitch/internal/database"
)

// MaintenanceService houses destructive actions surfaced through the CLI.
type MaintenanceService struct {
	Cache *cache.Cache
	// DB is set when the cache lives in sqlite.
	DB *sql.DB
}

// Reset forgets every cached classification. The next refresh asks the
// remote again for each application.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.Cache == nil {
		return fmt.Errorf("maintenance: cache not configured")
	}
	if err := s.Cache.Reset(ctx); err != nil {
		return fmt.Errorf("maintenance: reset cache: %w", err)
	}
	if s.DB != nil {
		if err := database.Compact(ctx, s.DB); err != nil {
			return fmt.Errorf("maintenance: %w", err)
		}
	}
	return nil
}
