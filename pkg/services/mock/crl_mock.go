package mock

import (
	"context"
	"crypto/x509"

	"github.com/stretchr/testify/mock"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/services"
)

type MockIssuingPointService struct {
	mock.Mock
}

func (m *MockIssuingPointService) CreateIssuingPoint(ctx context.Context, input services.CreateIssuingPointInput) (*models.IssuingPoint, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssuingPoint), args.Error(1)
}

func (m *MockIssuingPointService) GetIssuingPoints(ctx context.Context, input services.GetIssuingPointsInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockIssuingPointService) GetIssuingPointByID(ctx context.Context, input services.GetIssuingPointByIDInput) (*models.IssuingPoint, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssuingPoint), args.Error(1)
}

func (m *MockIssuingPointService) UpdateIssuingPoint(ctx context.Context, input services.UpdateIssuingPointInput) (*models.IssuingPoint, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssuingPoint), args.Error(1)
}

func (m *MockIssuingPointService) AddRevokedCert(ctx context.Context, input services.AddRevokedCertInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockIssuingPointService) AddUnrevokedCert(ctx context.Context, input services.AddUnrevokedCertInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockIssuingPointService) CalculateCRL(ctx context.Context, input services.CalculateCRLInput) (*x509.RevocationList, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*x509.RevocationList), args.Error(1)
}

func (m *MockIssuingPointService) GetCRL(ctx context.Context, input services.GetCRLInput) (*x509.RevocationList, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*x509.RevocationList), args.Error(1)
}
