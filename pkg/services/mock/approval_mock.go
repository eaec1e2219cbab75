package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/services"
)

type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) ApproveRequest(ctx context.Context, input services.ApproveRequestInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockApprovalService) RejectRequest(ctx context.Context, input services.RejectRequestInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockApprovalService) CancelRequest(ctx context.Context, input services.CancelRequestInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockApprovalService) AssignRequest(ctx context.Context, input services.AssignRequestInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockApprovalService) UnassignRequest(ctx context.Context, input services.UnassignRequestInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockApprovalService) UpdateRequestDefaults(ctx context.Context, input services.UpdateRequestDefaultsInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockApprovalService) ValidateRequest(ctx context.Context, input services.ValidateRequestInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}
