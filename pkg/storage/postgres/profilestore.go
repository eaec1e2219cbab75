package postgres

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/models"
	"gorm.io/gorm"
)

type PostgresProfileStorage struct {
	db      *gorm.DB
	querier *postgresDBQuerier[models.Profile]
}

func NewProfileRepository(logger *logrus.Entry, db *gorm.DB) (storage.ProfilesRepo, error) {
	querier, err := TableQuery(logger, db, "profiles", "id", models.Profile{})
	if err != nil {
		return nil, err
	}

	return &PostgresProfileStorage{
		db:      db,
		querier: querier,
	}, nil
}

func (db *PostgresProfileStorage) Count(ctx context.Context) (int, error) {
	return db.querier.Count(ctx, []gormExtraOps{})
}

func (db *PostgresProfileStorage) SelectAll(ctx context.Context, req storage.StorageListRequest[models.Profile]) (string, error) {
	return db.querier.SelectAll(ctx, req.QueryParams, []gormExtraOps{}, req.ExhaustiveRun, req.ApplyFunc)
}

func (db *PostgresProfileStorage) SelectExistsByID(ctx context.Context, id string) (bool, *models.Profile, error) {
	return db.querier.SelectExists(ctx, id, nil)
}

func (db *PostgresProfileStorage) Insert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	return db.querier.Insert(ctx, profile, profile.ID)
}

func (db *PostgresProfileStorage) Update(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	return db.querier.Update(ctx, profile, profile.ID)
}

func (db *PostgresProfileStorage) Delete(ctx context.Context, id string) error {
	return db.querier.Delete(ctx, id)
}
