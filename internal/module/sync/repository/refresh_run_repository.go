package repository

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/yearn/ySync/internal/database"
	"github.com/yearn/ySync/internal/database/schema"
)

type RefreshRunRepository interface {
	Save(run schema.RefreshRun) error
	Latest(chainID int) (*schema.RefreshRun, error)
	LatestSuccess(chainID int) (*schema.RefreshRun, error)
	DeleteOlderThan(cutoff time.Time) error
}

type refreshRunRepository struct {
	db     *database.Database
	logger zerolog.Logger
}

func NewRefreshRunRepository(db *database.Database, logger zerolog.Logger) RefreshRunRepository {
	return &refreshRunRepository{
		db:     db,
		logger: logger,
	}
}

func (r *refreshRunRepository) Save(run schema.RefreshRun) error {
	return r.db.DB.Create(&run).Error
}

func (r *refreshRunRepository) Latest(chainID int) (*schema.RefreshRun, error) {
	var run schema.RefreshRun
	err := r.db.DB.Where("chain_id = ?", chainID).Order("created_at DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LatestSuccess skips superseded runs: they completed but their snapshot was
// never published, so they cannot vouch for what a reader can observe.
func (r *refreshRunRepository) LatestSuccess(chainID int) (*schema.RefreshRun, error) {
	var run schema.RefreshRun
	err := r.db.DB.Where("chain_id = ? AND success = ? AND superseded = ?", chainID, true, false).Order("created_at DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *refreshRunRepository) DeleteOlderThan(cutoff time.Time) error {
	return r.db.DB.Unscoped().Where("created_at < ?", cutoff).Delete(&schema.RefreshRun{}).Error
}
