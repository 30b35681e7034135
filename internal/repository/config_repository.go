package repository

import (
	"context"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

// ConfigRepository manages the singleton risk configuration record. The
// collection holds exactly one entry; updates replace it wholesale.
type ConfigRepository struct {
	c *collection[models.RiskConfig]
}

// NewConfigRepository constructs the repository seeded with defaults.
func NewConfigRepository(store *recordstore.Store) *ConfigRepository {
	seed := []models.RiskConfig{models.DefaultRiskConfig()}
	return &ConfigRepository{c: newCollection[models.RiskConfig](store, keyConfig, seed)}
}

// Get returns the active configuration; the seeded default applies until an
// administrator saves one.
func (r *ConfigRepository) Get(ctx context.Context) models.RiskConfig {
	records := r.c.snapshot(ctx)
	if len(records) == 0 {
		return models.DefaultRiskConfig()
	}
	return records[0]
}

// Replace persists the new configuration as the only record.
func (r *ConfigRepository) Replace(ctx context.Context, cfg models.RiskConfig) error {
	return r.c.update(ctx, func([]models.RiskConfig) []models.RiskConfig {
		return []models.RiskConfig{cfg}
	})
}
