package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/services"
)

type MockRequestQueueService struct {
	mock.Mock
}

func (m *MockRequestQueueService) CreateRequest(ctx context.Context, input services.CreateRequestInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRequestQueueService) ProcessRequest(ctx context.Context, request *models.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestQueueService) MarkAsServiced(ctx context.Context, request *models.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestQueueService) UpdateRequest(ctx context.Context, request *models.Request) (*models.Request, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRequestQueueService) GetRequestByID(ctx context.Context, input services.GetRequestByIDInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRequestQueueService) GetRequests(ctx context.Context, input services.GetRequestsInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}
