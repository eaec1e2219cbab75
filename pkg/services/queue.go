package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jakehl/goid"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
)

var queueValidate *validator.Validate

// RequestPolicy screens a request before its service stage runs. Returning a
// *errs.DeferredError parks the request as PENDING for manual approval;
// returning a *errs.RejectedError closes it as REJECTED. Any other error
// aborts processing and leaves the request untouched.
type RequestPolicy interface {
	Apply(ctx context.Context, request *models.Request) error
}

// RequestService is the terminal stage for one request type. It may record
// per-item service errors on the request; returning an error marks the whole
// request as completed with RES_ERROR.
type RequestService interface {
	ServiceRequest(ctx context.Context, request *models.Request) error
}

type RequestQueueService interface {
	CreateRequest(ctx context.Context, input CreateRequestInput) (*models.Request, error)
	ProcessRequest(ctx context.Context, request *models.Request) error
	MarkAsServiced(ctx context.Context, request *models.Request) error
	UpdateRequest(ctx context.Context, request *models.Request) (*models.Request, error)
	GetRequestByID(ctx context.Context, input GetRequestByIDInput) (*models.Request, error)
	GetRequests(ctx context.Context, input GetRequestsInput) (string, error)
}

type CreateRequestInput struct {
	Type          models.RequestType `validate:"required"`
	RequestorType models.RequestorType
	Owner         string
	ExtData       *models.ExtDataMap
}

type GetRequestByIDInput struct {
	ID string `validate:"required"`
}

type GetRequestsInput struct {
	resources.ListInput[models.Request]
}

type RequestQueueBackend struct {
	logger       *logrus.Entry
	requestsRepo storage.RequestsRepo
	policies     []RequestPolicy
	services     map[models.RequestType]RequestService
	service      RequestQueueService
}

type RequestQueueBuilder struct {
	Logger       *logrus.Entry
	RequestsRepo storage.RequestsRepo
	Policies     []RequestPolicy
	Services     map[models.RequestType]RequestService
}

type RequestQueueMiddleware func(RequestQueueService) RequestQueueService

func NewRequestQueueService(builder RequestQueueBuilder) RequestQueueService {
	queueValidate = validator.New()

	svcs := builder.Services
	if svcs == nil {
		svcs = map[models.RequestType]RequestService{}
	}

	svc := &RequestQueueBackend{
		logger:       builder.Logger,
		requestsRepo: builder.RequestsRepo,
		policies:     builder.Policies,
		services:     svcs,
	}

	svc.service = svc

	return svc
}

func (svc *RequestQueueBackend) SetService(service RequestQueueService) {
	svc.service = service
}

// RegisterService binds the terminal stage for one request type. Requests of
// an unbound type are parked as PENDING when processed.
func (svc *RequestQueueBackend) RegisterService(reqType models.RequestType, reqSvc RequestService) {
	svc.services[reqType] = reqSvc
}

func (svc *RequestQueueBackend) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := queueValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	extData := input.ExtData
	if extData == nil {
		extData = models.NewExtDataMap()
	}

	now := time.Now()
	request := &models.Request{
		ID:             goid.NewV4UUID().String(),
		Type:           input.Type,
		Status:         models.RequestStatusBegin,
		Owner:          input.Owner,
		RequestorType:  input.RequestorType,
		CreationTS:     now,
		ModificationTS: now,
		ExtData:        extData,
	}

	lFunc.Debugf("creating %s request %s", request.Type, request.ID)
	return svc.requestsRepo.Insert(ctx, request)
}

// ProcessRequest runs the policy chain and then the service stage registered
// for the request's type, synchronously, mutating the request's status and
// result fields in place. The persisted request is the authority on the
// outcome: callers branch on the status the queue left behind.
func (svc *RequestQueueBackend) ProcessRequest(ctx context.Context, request *models.Request) error {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	if request == nil || request.ID == "" {
		return errs.ErrValidateBadRequest
	}

	if request.Status.IsTerminal() {
		lFunc.Errorf("request %s already reached terminal status %s", request.ID, request.Status)
		return errs.ErrRequestTerminal
	}

	for _, policy := range svc.policies {
		err := policy.Apply(ctx, request)
		if err == nil {
			continue
		}

		var deferred *errs.DeferredError
		if errors.As(err, &deferred) {
			lFunc.Infof("request %s deferred: %s", request.ID, deferred.Reason)
			request.Status = models.RequestStatusPending
			request.ExtData.Set(models.ExtErrorCode, models.ExtInt(models.ErrorCodeDeferred))
			return svc.persist(ctx, request)
		}

		var rejected *errs.RejectedError
		if errors.As(err, &rejected) {
			lFunc.Infof("request %s rejected: %s", request.ID, rejected.Reason)
			request.Status = models.RequestStatusRejected
			request.Error = rejected.Reason
			request.ExtData.Set(models.ExtErrorCode, models.ExtInt(models.ErrorCodeRejected))
			return svc.persist(ctx, request)
		}

		lFunc.Errorf("policy failure for request %s: %s", request.ID, err)
		return err
	}

	request.Status = models.RequestStatusApproved

	if request.Type == models.RequestTypeReplicaPropagation {
		// propagation requests are serviced by the replica, not here
		request.Status = models.RequestStatusSvcPending
		return svc.persist(ctx, request)
	}

	reqService, ok := svc.services[request.Type]
	if !ok {
		lFunc.Infof("no service registered for %s requests, parking request %s", request.Type, request.ID)
		request.Status = models.RequestStatusPending
		return svc.persist(ctx, request)
	}

	err := reqService.ServiceRequest(ctx, request)
	request.Status = models.RequestStatusComplete
	if err != nil {
		lFunc.Errorf("service stage failed for request %s: %s", request.ID, err)
		request.Result = models.ResultError
		request.ServiceErrors = append(request.ServiceErrors, err.Error())
	} else if request.Result == "" {
		request.Result = models.ResultSuccess
	}

	request.ExtData.Set(models.ExtResult, models.ExtString(string(request.Result)))
	if len(request.ServiceErrors) > 0 {
		request.ExtData.Set(models.ExtSvcErrors, models.ExtStrings(request.ServiceErrors))
	}

	return svc.service.MarkAsServiced(ctx, request)
}

func (svc *RequestQueueBackend) MarkAsServiced(ctx context.Context, request *models.Request) error {
	request.ModificationTS = time.Now()
	_, err := svc.requestsRepo.Update(ctx, request)
	return err
}

func (svc *RequestQueueBackend) UpdateRequest(ctx context.Context, request *models.Request) (*models.Request, error) {
	request.ModificationTS = time.Now()
	return svc.requestsRepo.Update(ctx, request)
}

func (svc *RequestQueueBackend) GetRequestByID(ctx context.Context, input GetRequestByIDInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := queueValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	exists, request, err := svc.requestsRepo.SelectExistsByID(ctx, input.ID)
	if err != nil {
		lFunc.Errorf("something went wrong while reading request %s: %s", input.ID, err)
		return nil, err
	}

	if !exists {
		return nil, errs.ErrRequestNotFound
	}

	return request, nil
}

func (svc *RequestQueueBackend) GetRequests(ctx context.Context, input GetRequestsInput) (string, error) {
	return svc.requestsRepo.SelectAll(ctx, storage.StorageListRequest[models.Request]{
		ExhaustiveRun: input.ExhaustiveRun,
		QueryParams:   input.QueryParameters,
		ApplyFunc:     input.ApplyFunc,
	})
}

func (svc *RequestQueueBackend) persist(ctx context.Context, request *models.Request) error {
	request.ModificationTS = time.Now()
	_, err := svc.requestsRepo.Update(ctx, request)
	return err
}
