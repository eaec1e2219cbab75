package postgres

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/models"
	"gorm.io/gorm"
)

type PostgresIssuingPointStorage struct {
	db      *gorm.DB
	querier *postgresDBQuerier[models.IssuingPoint]
}

func NewIssuingPointRepository(logger *logrus.Entry, db *gorm.DB) (storage.IssuingPointsRepo, error) {
	querier, err := TableQuery(logger, db, "crl_issuing_points", "id", models.IssuingPoint{})
	if err != nil {
		return nil, err
	}

	return &PostgresIssuingPointStorage{
		db:      db,
		querier: querier,
	}, nil
}

func (db *PostgresIssuingPointStorage) Count(ctx context.Context) (int, error) {
	return db.querier.Count(ctx, []gormExtraOps{})
}

func (db *PostgresIssuingPointStorage) SelectAll(ctx context.Context, req storage.StorageListRequest[models.IssuingPoint]) (string, error) {
	return db.querier.SelectAll(ctx, req.QueryParams, []gormExtraOps{}, req.ExhaustiveRun, req.ApplyFunc)
}

func (db *PostgresIssuingPointStorage) SelectExistsByID(ctx context.Context, id string) (bool, *models.IssuingPoint, error) {
	return db.querier.SelectExists(ctx, id, nil)
}

func (db *PostgresIssuingPointStorage) Insert(ctx context.Context, issuingPoint *models.IssuingPoint) (*models.IssuingPoint, error) {
	return db.querier.Insert(ctx, issuingPoint, issuingPoint.ID)
}

func (db *PostgresIssuingPointStorage) Update(ctx context.Context, issuingPoint *models.IssuingPoint) (*models.IssuingPoint, error) {
	return db.querier.Update(ctx, issuingPoint, issuingPoint.ID)
}

func (db *PostgresIssuingPointStorage) Delete(ctx context.Context, id string) error {
	return db.querier.Delete(ctx, id)
}
