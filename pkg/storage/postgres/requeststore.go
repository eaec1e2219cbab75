package postgres

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
	"gorm.io/gorm"
)

type PostgresRequestStorage struct {
	db      *gorm.DB
	querier *postgresDBQuerier[models.Request]
}

func NewRequestRepository(logger *logrus.Entry, db *gorm.DB) (storage.RequestsRepo, error) {
	querier, err := TableQuery(logger, db, "requests", "id", models.Request{})
	if err != nil {
		return nil, err
	}

	return &PostgresRequestStorage{
		db:      db,
		querier: querier,
	}, nil
}

func (db *PostgresRequestStorage) Count(ctx context.Context) (int, error) {
	return db.querier.Count(ctx, []gormExtraOps{})
}

func (db *PostgresRequestStorage) CountWithFilters(ctx context.Context, queryParams *resources.QueryParameters) (int, error) {
	opts := []gormExtraOps{}
	for _, filter := range queryParams.Filters {
		opts = append(opts, filterToExtraOp(filter))
	}
	return db.querier.Count(ctx, opts)
}

func (db *PostgresRequestStorage) CountByStatus(ctx context.Context, status models.RequestStatus) (int, error) {
	return db.querier.Count(ctx, []gormExtraOps{
		{query: "status = ?", additionalWhere: []any{status}},
	})
}

func (db *PostgresRequestStorage) SelectAll(ctx context.Context, req storage.StorageListRequest[models.Request]) (string, error) {
	return db.querier.SelectAll(ctx, req.QueryParams, []gormExtraOps{}, req.ExhaustiveRun, req.ApplyFunc)
}

func (db *PostgresRequestStorage) SelectByStatus(ctx context.Context, status models.RequestStatus, req storage.StorageListRequest[models.Request]) (string, error) {
	opts := []gormExtraOps{
		{query: "status = ?", additionalWhere: []any{status}},
	}

	return db.querier.SelectAll(ctx, req.QueryParams, opts, req.ExhaustiveRun, req.ApplyFunc)
}

func (db *PostgresRequestStorage) SelectByOwner(ctx context.Context, owner string, req storage.StorageListRequest[models.Request]) (string, error) {
	opts := []gormExtraOps{
		{query: "owner = ?", additionalWhere: []any{owner}},
	}

	return db.querier.SelectAll(ctx, req.QueryParams, opts, req.ExhaustiveRun, req.ApplyFunc)
}

func (db *PostgresRequestStorage) SelectExistsByID(ctx context.Context, id string) (bool, *models.Request, error) {
	return db.querier.SelectExists(ctx, id, nil)
}

func (db *PostgresRequestStorage) Insert(ctx context.Context, request *models.Request) (*models.Request, error) {
	return db.querier.Insert(ctx, request, request.ID)
}

func (db *PostgresRequestStorage) Update(ctx context.Context, request *models.Request) (*models.Request, error) {
	return db.querier.Update(ctx, request, request.ID)
}

func (db *PostgresRequestStorage) Delete(ctx context.Context, id string) error {
	return db.querier.Delete(ctx, id)
}
