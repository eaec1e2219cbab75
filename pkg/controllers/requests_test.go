package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/veridiapki/veridia/pkg/config"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/services"
	svcmock "github.com/veridiapki/veridia/pkg/services/mock"
)

func buildRequestsTestRouter(queue *svcmock.MockRequestQueueService, approval *svcmock.MockApprovalService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := helpers.SetupLogger(config.Info, "Test Case", "HTTP")

	routes := NewRequestsHttpRoutes(log, queue, approval, nil)

	router := gin.New()
	router.GET("/requests/:id", routes.GetRequestByID)
	router.POST("/requests/:id/approve", routes.ApproveRequest)
	router.POST("/requests/:id/reject", routes.RejectRequest)

	return router
}

func TestGetRequestByIDHttp(t *testing.T) {
	mockQueue := new(svcmock.MockRequestQueueService)
	mockApproval := new(svcmock.MockApprovalService)
	router := buildRequestsTestRouter(mockQueue, mockApproval)

	mockQueue.On("GetRequestByID", mock.Anything, services.GetRequestByIDInput{ID: "req-1"}).
		Return(&models.Request{ID: "req-1", Status: models.RequestStatusPending}, nil)

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/requests/req-1", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"id":"req-1"`)
	mockQueue.AssertExpectations(t)
}

func TestGetRequestByIDHttpNotFound(t *testing.T) {
	mockQueue := new(svcmock.MockRequestQueueService)
	mockApproval := new(svcmock.MockApprovalService)
	router := buildRequestsTestRouter(mockQueue, mockApproval)

	mockQueue.On("GetRequestByID", mock.Anything, mock.Anything).
		Return(nil, errs.ErrRequestNotFound)

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/requests/missing", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestApproveRequestHttpStatusMapping(t *testing.T) {
	var testcases = []struct {
		name         string
		serviceErr   error
		expectedCode int
	}{
		{name: "OK", serviceErr: nil, expectedCode: http.StatusOK},
		{name: "Err/NotPending", serviceErr: errs.ErrRequestNotPending, expectedCode: http.StatusConflict},
		{name: "Err/NotOwner", serviceErr: errs.ErrNotRequestOwner, expectedCode: http.StatusForbidden},
		{name: "Err/NotFound", serviceErr: errs.ErrRequestNotFound, expectedCode: http.StatusNotFound},
		{name: "Err/MissingNonce", serviceErr: errs.ErrNonceNotFound, expectedCode: http.StatusConflict},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mockQueue := new(svcmock.MockRequestQueueService)
			mockApproval := new(svcmock.MockApprovalService)
			router := buildRequestsTestRouter(mockQueue, mockApproval)

			var approved *models.Request
			if tc.serviceErr == nil {
				approved = &models.Request{ID: "req-1", Status: models.RequestStatusComplete}
			}
			mockApproval.On("ApproveRequest", mock.Anything, mock.Anything).Return(approved, tc.serviceErr)

			recorder := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/requests/req-1/approve", strings.NewReader(`{}`))
			router.ServeHTTP(recorder, req)

			assert.Equal(t, tc.expectedCode, recorder.Code)
			mockApproval.AssertExpectations(t)
		})
	}
}

func TestRejectRequestHttpForwardsReason(t *testing.T) {
	mockQueue := new(svcmock.MockRequestQueueService)
	mockApproval := new(svcmock.MockApprovalService)
	router := buildRequestsTestRouter(mockQueue, mockApproval)

	mockApproval.On("RejectRequest", mock.Anything, mock.MatchedBy(func(input services.RejectRequestInput) bool {
		return input.RequestID == "req-1" && input.Reason == "policy violation"
	})).Return(&models.Request{ID: "req-1", Status: models.RequestStatusRejected}, nil)

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/requests/req-1/reject", strings.NewReader(`{"reason":"policy violation"}`))
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	mockApproval.AssertExpectations(t)
}
