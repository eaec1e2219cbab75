package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/eventpub"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
)

var approvalValidate *validator.Validate

type ApprovalService interface {
	ApproveRequest(ctx context.Context, input ApproveRequestInput) (*models.Request, error)
	RejectRequest(ctx context.Context, input RejectRequestInput) (*models.Request, error)
	CancelRequest(ctx context.Context, input CancelRequestInput) (*models.Request, error)
	AssignRequest(ctx context.Context, input AssignRequestInput) (*models.Request, error)
	UnassignRequest(ctx context.Context, input UnassignRequestInput) (*models.Request, error)
	UpdateRequestDefaults(ctx context.Context, input UpdateRequestDefaultsInput) (*models.Request, error)
	ValidateRequest(ctx context.Context, input ValidateRequestInput) (*models.Request, error)
}

type agentAction struct {
	RequestID string
	AgentID   string
	Nonce     *int64
	SessionID string
}

type ApproveRequestInput struct {
	RequestID string `validate:"required"`
	AgentID   string `validate:"required"`
	Nonce     *int64
	SessionID string
}

type RejectRequestInput struct {
	RequestID string `validate:"required"`
	AgentID   string `validate:"required"`
	Reason    string
	Nonce     *int64
	SessionID string
}

type CancelRequestInput struct {
	RequestID string `validate:"required"`
	AgentID   string `validate:"required"`
	Nonce     *int64
	SessionID string
}

type AssignRequestInput struct {
	RequestID string `validate:"required"`
	AgentID   string `validate:"required"`
	// Assignee defaults to the acting agent.
	Assignee string
}

type UnassignRequestInput struct {
	RequestID string `validate:"required"`
	AgentID   string `validate:"required"`
}

type UpdateRequestDefaultsInput struct {
	RequestID string `validate:"required"`
	AgentID   string `validate:"required"`
	// Defaults overwrite the matching extended-data entries.
	Defaults map[string]string `validate:"required"`
}

type ValidateRequestInput struct {
	RequestID string `validate:"required"`
	AgentID   string `validate:"required"`
}

type ApprovalServiceBackend struct {
	logger         *logrus.Entry
	queue          RequestQueueService
	profilesRepo   storage.ProfilesRepo
	nonces         *NonceManager
	eventPublisher eventpub.ICloudEventPublisher
	profiles       map[string]RequestProfile
	enforceOwner   bool
	service        ApprovalService
}

type ApprovalServiceBuilder struct {
	Logger         *logrus.Entry
	Queue          RequestQueueService
	ProfilesRepo   storage.ProfilesRepo
	Nonces         *NonceManager
	EventPublisher eventpub.ICloudEventPublisher
	// Profiles maps profile IDs to their executable workflow; approvals of
	// requests carrying an unmapped profile run the basic workflow.
	Profiles map[string]RequestProfile
	// EnforceOwner restricts state-changing actions to the assigned agent.
	EnforceOwner bool
}

type ApprovalMiddleware func(ApprovalService) ApprovalService

func NewApprovalService(builder ApprovalServiceBuilder) ApprovalService {
	approvalValidate = validator.New()

	profiles := builder.Profiles
	if profiles == nil {
		profiles = map[string]RequestProfile{}
	}

	svc := &ApprovalServiceBackend{
		logger:         builder.Logger,
		queue:          builder.Queue,
		profilesRepo:   builder.ProfilesRepo,
		nonces:         builder.Nonces,
		eventPublisher: builder.EventPublisher,
		profiles:       profiles,
		enforceOwner:   builder.EnforceOwner,
	}

	svc.service = svc

	return svc
}

func (svc *ApprovalServiceBackend) SetService(service ApprovalService) {
	svc.service = service
}

// guardedRequest loads the request and enforces the shared transition
// guards, in order: the request must be PENDING, the nonce (when enabled)
// must match, and the caller must hold permission. Permission is implicit
// when assignee enforcement is off, when the request is unassigned, or when
// the caller is the assigned owner.
func (svc *ApprovalServiceBackend) guardedRequest(ctx context.Context, action agentAction, nonceOp string) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	request, err := svc.queue.GetRequestByID(ctx, GetRequestByIDInput{ID: action.RequestID})
	if err != nil {
		return nil, err
	}

	if request.Status != models.RequestStatusPending {
		lFunc.Errorf("request %s is %s, not PENDING", request.ID, request.Status)
		return nil, errs.ErrRequestNotPending
	}

	if svc.nonces != nil && nonceOp != "" {
		if action.Nonce == nil {
			return nil, errs.ErrNonceNotFound
		}

		err = svc.nonces.Verify(action.SessionID, nonceOp, action.RequestID, *action.Nonce)
		if err != nil {
			return nil, err
		}
	}

	if svc.enforceOwner && request.Owner != "" && request.Owner != action.AgentID {
		lFunc.Errorf("request %s is assigned to %s, not %s", request.ID, request.Owner, action.AgentID)
		return nil, errs.ErrNotRequestOwner
	}

	return request, nil
}

func (svc *ApprovalServiceBackend) profileFor(ctx context.Context, request *models.Request) (*models.Profile, RequestProfile, error) {
	profileID, ok := request.ExtData.GetString(models.ExtProfileID)
	if !ok {
		return nil, nil, errs.ErrProfileNotFound
	}

	exists, record, err := svc.profilesRepo.SelectExistsByID(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}

	if !exists {
		return nil, nil, errs.ErrProfileNotFound
	}

	workflow, ok := svc.profiles[profileID]
	if !ok {
		workflow = &BasicProfile{Record: record}
	}

	return record, workflow, nil
}

func (svc *ApprovalServiceBackend) ApproveRequest(ctx context.Context, input ApproveRequestInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := approvalValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	request, err := svc.guardedRequest(ctx, agentAction(input), NonceOpApprove)
	if err != nil {
		return nil, err
	}

	record, workflow, err := svc.profileFor(ctx, request)
	if err != nil {
		return nil, err
	}

	// a profile updated after the request was created invalidates it
	if !record.LastModified.Before(request.CreationTS) {
		lFunc.Errorf("profile %s changed after request %s was created", record.ID, request.ID)
		svc.auditAction(ctx, models.EventRequestApproveKey, request, input.AgentID, models.AuditOutcomeFailure)
		return nil, errs.ErrProfileChanged
	}

	err = workflow.Execute(ctx, request)
	if err != nil {
		lFunc.Errorf("profile execution failed for request %s: %s", request.ID, err)
		svc.auditAction(ctx, models.EventRequestApproveKey, request, input.AgentID, models.AuditOutcomeFailure)
		return nil, err
	}

	request.Status = models.RequestStatusComplete
	request.Result = models.ResultSuccess
	request.ExtData.Set(models.ExtResult, models.ExtString(string(models.ResultSuccess)))

	err = svc.queue.MarkAsServiced(ctx, request)
	if err != nil {
		return nil, err
	}

	svc.auditAction(ctx, models.EventRequestApproveKey, request, input.AgentID, models.AuditOutcomeSuccess)
	return request, nil
}

func (svc *ApprovalServiceBackend) RejectRequest(ctx context.Context, input RejectRequestInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := approvalValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	request, err := svc.guardedRequest(ctx, agentAction{
		RequestID: input.RequestID,
		AgentID:   input.AgentID,
		Nonce:     input.Nonce,
		SessionID: input.SessionID,
	}, NonceOpReject)
	if err != nil {
		return nil, err
	}

	request.Status = models.RequestStatusRejected
	request.Error = input.Reason

	request, err = svc.queue.UpdateRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	svc.auditAction(ctx, models.EventRequestRejectKey, request, input.AgentID, models.AuditOutcomeFailure)
	return request, nil
}

// CancelRequest closes the request as CANCELED. The audit outcome is
// FAILURE even though cancellation is a legitimate operator action: that is
// this system's audit taxonomy and downstream consumers depend on it.
func (svc *ApprovalServiceBackend) CancelRequest(ctx context.Context, input CancelRequestInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := approvalValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	request, err := svc.guardedRequest(ctx, agentAction(input), NonceOpCancel)
	if err != nil {
		return nil, err
	}

	request.Status = models.RequestStatusCanceled

	request, err = svc.queue.UpdateRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	svc.auditAction(ctx, models.EventRequestCancelKey, request, input.AgentID, models.AuditOutcomeFailure)
	return request, nil
}

func (svc *ApprovalServiceBackend) AssignRequest(ctx context.Context, input AssignRequestInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := approvalValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	request, err := svc.guardedRequest(ctx, agentAction{RequestID: input.RequestID, AgentID: input.AgentID}, "")
	if err != nil {
		return nil, err
	}

	assignee := input.Assignee
	if assignee == "" {
		assignee = input.AgentID
	}
	request.Owner = assignee

	request, err = svc.queue.UpdateRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	svc.auditAction(ctx, models.EventRequestAssignKey, request, input.AgentID, models.AuditOutcomeSuccess)
	return request, nil
}

func (svc *ApprovalServiceBackend) UnassignRequest(ctx context.Context, input UnassignRequestInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := approvalValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	request, err := svc.guardedRequest(ctx, agentAction{RequestID: input.RequestID, AgentID: input.AgentID}, "")
	if err != nil {
		return nil, err
	}

	request.Owner = ""

	request, err = svc.queue.UpdateRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	svc.auditAction(ctx, models.EventRequestUnassignKey, request, input.AgentID, models.AuditOutcomeSuccess)
	return request, nil
}

func (svc *ApprovalServiceBackend) UpdateRequestDefaults(ctx context.Context, input UpdateRequestDefaultsInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := approvalValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	request, err := svc.guardedRequest(ctx, agentAction{RequestID: input.RequestID, AgentID: input.AgentID}, "")
	if err != nil {
		return nil, err
	}

	for key, value := range input.Defaults {
		request.ExtData.Set(key, models.ExtString(value))
	}

	request, err = svc.queue.UpdateRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	svc.auditAction(ctx, models.EventRequestUpdateKey, request, input.AgentID, models.AuditOutcomeSuccess)
	return request, nil
}

// ValidateRequest re-runs the profile population hook without changing the
// request status, so an agent can check a pending request against current
// policy defaults.
func (svc *ApprovalServiceBackend) ValidateRequest(ctx context.Context, input ValidateRequestInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := approvalValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	request, err := svc.guardedRequest(ctx, agentAction{RequestID: input.RequestID, AgentID: input.AgentID}, "")
	if err != nil {
		return nil, err
	}

	_, workflow, err := svc.profileFor(ctx, request)
	if err != nil {
		return nil, err
	}

	err = workflow.PopulateRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	request, err = svc.queue.UpdateRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	svc.auditAction(ctx, models.EventRequestValidateKey, request, input.AgentID, models.AuditOutcomeSuccess)
	return request, nil
}

func (svc *ApprovalServiceBackend) auditAction(ctx context.Context, eventType models.EventType, request *models.Request, agentID string, outcome models.AuditOutcome) {
	if svc.eventPublisher == nil {
		return
	}

	ctx = context.WithValue(ctx, veridia.ContextKeyEventType, eventType)
	ctx = context.WithValue(ctx, veridia.ContextKeyEventSubject, fmt.Sprintf("request/%s", request.ID))

	svc.eventPublisher.PublishCloudEvent(ctx, models.RequestProcessedEvent{
		RequestID:     request.ID,
		Outcome:       outcome,
		RequesterID:   agentID,
		RequestStatus: request.Status,
	})
}
