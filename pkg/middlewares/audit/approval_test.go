package auditpub

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/services"
	svcmock "github.com/veridiapki/veridia/pkg/services/mock"
)

func approvalAuditChecker(t *testing.T, method string, input interface{}, serviceErr error) {
	mockApprovalService := new(svcmock.MockApprovalService)
	mockCloudEventPub := new(svcmock.MockCloudEventPublisher)

	approvalAuditPublisherMw := NewApprovalAuditEventPublisher(mockCloudEventPub)
	approvalAuditPublisher := approvalAuditPublisherMw(mockApprovalService)

	mockApprovalService.On(method, mock.Anything, mock.Anything).Return(&models.Request{ID: "req-1"}, serviceErr)
	mockCloudEventPub.On("PublishCloudEvent", mock.Anything, mock.Anything)

	m := reflect.ValueOf(approvalAuditPublisher).MethodByName(method)
	r := m.Call([]reflect.Value{reflect.ValueOf(context.Background()), reflect.ValueOf(input)})

	if serviceErr == nil {
		assert.Nil(t, r[1].Interface())
	} else {
		assert.NotNil(t, r[1].Interface())
	}

	mockApprovalService.AssertExpectations(t)
	mockCloudEventPub.AssertExpectations(t)
	mockCloudEventPub.AssertNumberOfCalls(t, "PublishCloudEvent", 1)
}

func TestApprovalAuditEventPublisher(t *testing.T) {
	var testcases = []struct {
		name string
		test func(t *testing.T)
	}{
		{
			name: "ApproveRequest without errors - Audit event produced",
			test: func(t *testing.T) {
				approvalAuditChecker(t, "ApproveRequest", services.ApproveRequestInput{}, nil)
			},
		},
		{
			name: "ApproveRequest with errors - Audit event produced",
			test: func(t *testing.T) {
				approvalAuditChecker(t, "ApproveRequest", services.ApproveRequestInput{}, errors.New("some error"))
			},
		},
		{
			name: "RejectRequest without errors - Audit event produced",
			test: func(t *testing.T) {
				approvalAuditChecker(t, "RejectRequest", services.RejectRequestInput{}, nil)
			},
		},
		{
			name: "CancelRequest without errors - Audit event produced",
			test: func(t *testing.T) {
				approvalAuditChecker(t, "CancelRequest", services.CancelRequestInput{}, nil)
			},
		},
		{
			name: "AssignRequest without errors - Audit event produced",
			test: func(t *testing.T) {
				approvalAuditChecker(t, "AssignRequest", services.AssignRequestInput{}, nil)
			},
		},
		{
			name: "UnassignRequest without errors - Audit event produced",
			test: func(t *testing.T) {
				approvalAuditChecker(t, "UnassignRequest", services.UnassignRequestInput{}, nil)
			},
		},
		{
			name: "UpdateRequestDefaults with errors - Audit event produced",
			test: func(t *testing.T) {
				approvalAuditChecker(t, "UpdateRequestDefaults", services.UpdateRequestDefaultsInput{}, errors.New("some error"))
			},
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.test(t)
		})
	}
}

func TestApprovalAuditSkipsValidate(t *testing.T) {
	mockApprovalService := new(svcmock.MockApprovalService)
	mockCloudEventPub := new(svcmock.MockCloudEventPublisher)

	approvalAuditPublisher := NewApprovalAuditEventPublisher(mockCloudEventPub)(mockApprovalService)

	mockApprovalService.On("ValidateRequest", mock.Anything, mock.Anything).Return(&models.Request{ID: "req-1"}, nil)

	_, err := approvalAuditPublisher.ValidateRequest(context.Background(), services.ValidateRequestInput{RequestID: "req-1", AgentID: "agent-1"})
	assert.Nil(t, err)

	mockCloudEventPub.AssertNotCalled(t, "PublishCloudEvent", mock.Anything, mock.Anything)
}
