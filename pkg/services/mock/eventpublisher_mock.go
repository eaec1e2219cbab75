package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockCloudEventPublisher struct {
	mock.Mock
}

func (m *MockCloudEventPublisher) PublishCloudEvent(ctx context.Context, payload interface{}) {
	m.Called(ctx, payload)
}
