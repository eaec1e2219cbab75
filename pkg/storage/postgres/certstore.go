package postgres

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
	"gorm.io/gorm"
)

type PostgresCertificateStorage struct {
	db      *gorm.DB
	querier *postgresDBQuerier[models.Certificate]
}

func NewCertificateRepository(logger *logrus.Entry, db *gorm.DB) (storage.CertificatesRepo, error) {
	querier, err := TableQuery(logger, db, "certificates", "serial_number", models.Certificate{})
	if err != nil {
		return nil, err
	}

	return &PostgresCertificateStorage{
		db:      db,
		querier: querier,
	}, nil
}

func (db *PostgresCertificateStorage) Count(ctx context.Context) (int, error) {
	return db.querier.Count(ctx, []gormExtraOps{})
}

func (db *PostgresCertificateStorage) CountWithFilters(ctx context.Context, queryParams *resources.QueryParameters) (int, error) {
	opts := []gormExtraOps{}
	for _, filter := range queryParams.Filters {
		opts = append(opts, filterToExtraOp(filter))
	}
	return db.querier.Count(ctx, opts)
}

func (db *PostgresCertificateStorage) CountByStatus(ctx context.Context, status models.CertificateStatus) (int, error) {
	return db.querier.Count(ctx, []gormExtraOps{
		{query: "status = ?", additionalWhere: []any{status}},
	})
}

func (db *PostgresCertificateStorage) SelectAll(ctx context.Context, req storage.StorageListRequest[models.Certificate]) (string, error) {
	return db.querier.SelectAll(ctx, req.QueryParams, []gormExtraOps{}, req.ExhaustiveRun, req.ApplyFunc)
}

func (db *PostgresCertificateStorage) SelectByStatus(ctx context.Context, status models.CertificateStatus, req storage.StorageListRequest[models.Certificate]) (string, error) {
	opts := []gormExtraOps{
		{query: "status = ?", additionalWhere: []any{status}},
	}

	return db.querier.SelectAll(ctx, req.QueryParams, opts, req.ExhaustiveRun, req.ApplyFunc)
}

func (db *PostgresCertificateStorage) SelectByExpirationDate(ctx context.Context, beforeExpirationDate time.Time, afterExpirationDate time.Time, req storage.StorageListRequest[models.Certificate]) (string, error) {
	opts := []gormExtraOps{
		{query: "valid_to > ?", additionalWhere: []any{afterExpirationDate}},
		{query: "valid_to < ?", additionalWhere: []any{beforeExpirationDate}},
		{query: "status != ?", additionalWhere: []any{models.StatusExpired}},
		{query: "status != ?", additionalWhere: []any{models.StatusRevoked}},
	}

	return db.querier.SelectAll(ctx, req.QueryParams, opts, req.ExhaustiveRun, req.ApplyFunc)
}

func (db *PostgresCertificateStorage) SelectRevokedSince(ctx context.Context, since time.Time, req storage.StorageListRequest[models.Certificate]) (string, error) {
	opts := []gormExtraOps{
		{query: "status = ?", additionalWhere: []any{models.StatusRevoked}},
		{query: "revocation_timestamp >= ?", additionalWhere: []any{since}},
	}

	return db.querier.SelectAll(ctx, req.QueryParams, opts, req.ExhaustiveRun, req.ApplyFunc)
}

func (db *PostgresCertificateStorage) SelectExistsBySerialNumber(ctx context.Context, serialNumber string) (bool, *models.Certificate, error) {
	return db.querier.SelectExists(ctx, serialNumber, nil)
}

func (db *PostgresCertificateStorage) Insert(ctx context.Context, certificate *models.Certificate) (*models.Certificate, error) {
	return db.querier.Insert(ctx, certificate, certificate.SerialNumber)
}

func (db *PostgresCertificateStorage) Update(ctx context.Context, certificate *models.Certificate) (*models.Certificate, error) {
	return db.querier.Update(ctx, certificate, certificate.SerialNumber)
}

func (db *PostgresCertificateStorage) Delete(ctx context.Context, serialNumber string) error {
	return db.querier.Delete(ctx, serialNumber)
}
