package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/services"
)

type MockRevocationService struct {
	mock.Mock
}

func (m *MockRevocationService) RevokeCertificate(ctx context.Context, input services.RevokeCertificateInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRevocationService) RevokeCertificatesByFilter(ctx context.Context, input services.RevokeCertificatesByFilterInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRevocationService) UnrevokeCertificate(ctx context.Context, input services.UnrevokeCertificateInput) (*models.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRevocationService) GetCertificateBySerialNumber(ctx context.Context, input services.GetCertificateBySerialNumberInput) (*models.Certificate, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Certificate), args.Error(1)
}

func (m *MockRevocationService) GetCertificates(ctx context.Context, input services.GetCertificatesInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}
