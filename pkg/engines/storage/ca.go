package storage

import (
	"context"
	"time"

	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
)

type CertificatesRepo interface {
	Count(ctx context.Context) (int, error)
	CountWithFilters(ctx context.Context, queryParams *resources.QueryParameters) (int, error)
	CountByStatus(ctx context.Context, status models.CertificateStatus) (int, error)
	SelectAll(ctx context.Context, req StorageListRequest[models.Certificate]) (string, error)
	SelectByStatus(ctx context.Context, status models.CertificateStatus, req StorageListRequest[models.Certificate]) (string, error)
	SelectByExpirationDate(ctx context.Context, beforeExpirationDate time.Time, afterExpirationDate time.Time, req StorageListRequest[models.Certificate]) (string, error)
	SelectRevokedSince(ctx context.Context, since time.Time, req StorageListRequest[models.Certificate]) (string, error)
	SelectExistsBySerialNumber(ctx context.Context, serialNumber string) (bool, *models.Certificate, error)
	Insert(ctx context.Context, certificate *models.Certificate) (*models.Certificate, error)
	Update(ctx context.Context, certificate *models.Certificate) (*models.Certificate, error)
	Delete(ctx context.Context, serialNumber string) error
}

type IssuingPointsRepo interface {
	Count(ctx context.Context) (int, error)
	SelectAll(ctx context.Context, req StorageListRequest[models.IssuingPoint]) (string, error)
	SelectExistsByID(ctx context.Context, id string) (bool, *models.IssuingPoint, error)
	Insert(ctx context.Context, issuingPoint *models.IssuingPoint) (*models.IssuingPoint, error)
	Update(ctx context.Context, issuingPoint *models.IssuingPoint) (*models.IssuingPoint, error)
	Delete(ctx context.Context, id string) error
}
