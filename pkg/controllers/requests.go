package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
	"github.com/veridiapki/veridia/pkg/services"
)

type requestsHttpRoutes struct {
	queue    services.RequestQueueService
	approval services.ApprovalService
	nonces   *services.NonceManager
	logger   *logrus.Entry
}

func NewRequestsHttpRoutes(logger *logrus.Entry, queue services.RequestQueueService, approval services.ApprovalService, nonces *services.NonceManager) *requestsHttpRoutes {
	return &requestsHttpRoutes{
		queue:    queue,
		approval: approval,
		nonces:   nonces,
		logger:   logger,
	}
}

func (r *requestsHttpRoutes) handleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrRequestNotFound), errors.Is(err, errs.ErrProfileNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrValidateBadRequest):
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrRequestNotPending), errors.Is(err, errs.ErrRequestTerminal),
		errors.Is(err, errs.ErrProfileChanged),
		errors.Is(err, errs.ErrNonceNotFound), errors.Is(err, errs.ErrNonceMismatch):
		ctx.JSON(http.StatusConflict, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrNotRequestOwner):
		ctx.JSON(http.StatusForbidden, gin.H{"err": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
	}
}

func bindRequestID(ctx *gin.Context) (string, bool) {
	type uriParams struct {
		RequestID string `uri:"id" binding:"required"`
	}

	var params uriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return "", false
	}

	return params.RequestID, true
}

func (r *requestsHttpRoutes) GetRequests(ctx *gin.Context) {
	queryParams := FilterQuery(ctx.Request, resources.RequestFilterableFields)

	requests := []models.Request{}
	nextBookmark, err := r.queue.GetRequests(ctx.Request.Context(), services.GetRequestsInput{
		ListInput: resources.ListInput[models.Request]{
			QueryParameters: queryParams,
			ExhaustiveRun:   false,
			ApplyFunc: func(request models.Request) {
				requests = append(requests, request)
			},
		},
	})
	if err != nil {
		r.logger.Errorf("something went wrong while listing requests: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resources.GetItemsResponse[models.Request]{
		NextBookmark: nextBookmark,
		List:         requests,
	})
}

func (r *requestsHttpRoutes) GetRequestByID(ctx *gin.Context) {
	requestID, ok := bindRequestID(ctx)
	if !ok {
		return
	}

	request, err := r.queue.GetRequestByID(ctx.Request.Context(), services.GetRequestByIDInput{ID: requestID})
	if err != nil {
		r.logger.Errorf("something went wrong while getting request: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}

// IssueNonce hands out the anti-replay token an agent must echo back on the
// matching state-changing call.
func (r *requestsHttpRoutes) IssueNonce(ctx *gin.Context) {
	requestID, ok := bindRequestID(ctx)
	if !ok {
		return
	}

	type uriOp struct {
		Operation string `uri:"op" binding:"required"`
	}

	var op uriOp
	if err := ctx.ShouldBindUri(&op); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var operation string
	switch op.Operation {
	case "approve":
		operation = services.NonceOpApprove
	case "reject":
		operation = services.NonceOpReject
	case "cancel":
		operation = services.NonceOpCancel
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"err": "unsupported nonce operation"})
		return
	}

	nonce, err := r.nonces.Issue(sessionID(ctx), operation, requestID)
	if err != nil {
		r.logger.Errorf("something went wrong while issuing nonce: %s", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

func (r *requestsHttpRoutes) ApproveRequest(ctx *gin.Context) {
	requestID, ok := bindRequestID(ctx)
	if !ok {
		return
	}

	var requestBody resources.AgentActionBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	request, err := r.approval.ApproveRequest(ctx.Request.Context(), services.ApproveRequestInput{
		RequestID: requestID,
		AgentID:   callerID(ctx),
		Nonce:     requestBody.Nonce,
		SessionID: sessionID(ctx),
	})
	if err != nil {
		r.logger.Errorf("something went wrong while approving request: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}

func (r *requestsHttpRoutes) RejectRequest(ctx *gin.Context) {
	requestID, ok := bindRequestID(ctx)
	if !ok {
		return
	}

	var requestBody resources.AgentActionBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	request, err := r.approval.RejectRequest(ctx.Request.Context(), services.RejectRequestInput{
		RequestID: requestID,
		AgentID:   callerID(ctx),
		Reason:    requestBody.Reason,
		Nonce:     requestBody.Nonce,
		SessionID: sessionID(ctx),
	})
	if err != nil {
		r.logger.Errorf("something went wrong while rejecting request: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}

func (r *requestsHttpRoutes) CancelRequest(ctx *gin.Context) {
	requestID, ok := bindRequestID(ctx)
	if !ok {
		return
	}

	var requestBody resources.AgentActionBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	request, err := r.approval.CancelRequest(ctx.Request.Context(), services.CancelRequestInput{
		RequestID: requestID,
		AgentID:   callerID(ctx),
		Nonce:     requestBody.Nonce,
		SessionID: sessionID(ctx),
	})
	if err != nil {
		r.logger.Errorf("something went wrong while canceling request: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}

func (r *requestsHttpRoutes) AssignRequest(ctx *gin.Context) {
	requestID, ok := bindRequestID(ctx)
	if !ok {
		return
	}

	var requestBody resources.AssignRequestBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	request, err := r.approval.AssignRequest(ctx.Request.Context(), services.AssignRequestInput{
		RequestID: requestID,
		AgentID:   callerID(ctx),
		Assignee:  requestBody.Assignee,
	})
	if err != nil {
		r.logger.Errorf("something went wrong while assigning request: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}

func (r *requestsHttpRoutes) UnassignRequest(ctx *gin.Context) {
	requestID, ok := bindRequestID(ctx)
	if !ok {
		return
	}

	request, err := r.approval.UnassignRequest(ctx.Request.Context(), services.UnassignRequestInput{
		RequestID: requestID,
		AgentID:   callerID(ctx),
	})
	if err != nil {
		r.logger.Errorf("something went wrong while unassigning request: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}

func (r *requestsHttpRoutes) UpdateRequestDefaults(ctx *gin.Context) {
	requestID, ok := bindRequestID(ctx)
	if !ok {
		return
	}

	var requestBody resources.UpdateRequestDefaultsBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	request, err := r.approval.UpdateRequestDefaults(ctx.Request.Context(), services.UpdateRequestDefaultsInput{
		RequestID: requestID,
		AgentID:   callerID(ctx),
		Defaults:  requestBody.Defaults,
	})
	if err != nil {
		r.logger.Errorf("something went wrong while updating request defaults: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}

func (r *requestsHttpRoutes) ValidateRequest(ctx *gin.Context) {
	requestID, ok := bindRequestID(ctx)
	if !ok {
		return
	}

	request, err := r.approval.ValidateRequest(ctx.Request.Context(), services.ValidateRequestInput{
		RequestID: requestID,
		AgentID:   callerID(ctx),
	})
	if err != nil {
		r.logger.Errorf("something went wrong while validating request: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}
