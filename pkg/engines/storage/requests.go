package storage

import (
	"context"

	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
)

type RequestsRepo interface {
	Count(ctx context.Context) (int, error)
	CountWithFilters(ctx context.Context, queryParams *resources.QueryParameters) (int, error)
	CountByStatus(ctx context.Context, status models.RequestStatus) (int, error)
	SelectAll(ctx context.Context, req StorageListRequest[models.Request]) (string, error)
	SelectByStatus(ctx context.Context, status models.RequestStatus, req StorageListRequest[models.Request]) (string, error)
	SelectByOwner(ctx context.Context, owner string, req StorageListRequest[models.Request]) (string, error)
	SelectExistsByID(ctx context.Context, id string) (bool, *models.Request, error)
	Insert(ctx context.Context, request *models.Request) (*models.Request, error)
	Update(ctx context.Context, request *models.Request) (*models.Request, error)
	Delete(ctx context.Context, id string) error
}

type ProfilesRepo interface {
	Count(ctx context.Context) (int, error)
	SelectAll(ctx context.Context, req StorageListRequest[models.Profile]) (string, error)
	SelectExistsByID(ctx context.Context, id string) (bool, *models.Profile, error)
	Insert(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	Delete(ctx context.Context, id string) error
}
