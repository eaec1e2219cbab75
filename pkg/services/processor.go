package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/eventpub"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
)

// PendingNotifier is called when a submitted request gets deferred for
// manual agent approval.
type PendingNotifier interface {
	NotifyPending(ctx context.Context, request *models.Request)
}

// RequestProcessor is the shared population and submission logic used by the
// enrollment, renewal and revocation flows.
type RequestProcessor struct {
	logger         *logrus.Entry
	queue          RequestQueueService
	eventPublisher eventpub.ICloudEventPublisher
	notifier       PendingNotifier
	authenticator  Authenticator
	raGroup        string
}

type RequestProcessorBuilder struct {
	Logger         *logrus.Entry
	Queue          RequestQueueService
	EventPublisher eventpub.ICloudEventPublisher
	Notifier       PendingNotifier
	Authenticator  Authenticator
	// RAGroup names the registration-agent group whose submissions are
	// auto-assigned to the submitting agent.
	RAGroup string
}

func NewRequestProcessor(builder RequestProcessorBuilder) *RequestProcessor {
	return &RequestProcessor{
		logger:         builder.Logger,
		queue:          builder.Queue,
		eventPublisher: builder.EventPublisher,
		notifier:       builder.Notifier,
		authenticator:  builder.Authenticator,
		raGroup:        builder.RAGroup,
	}
}

type PopulateRequestsInput struct {
	Profile   RequestProfile
	AuthToken *models.AuthToken
	// Inputs carries the submitted form fields for fresh enrollments.
	Inputs map[string]string
	// Origin is the original request for renewals; its CERT_INFO and
	// OLD_SERIALS entries are carried over.
	Origin   *models.Request
	Requests []*models.Request
}

// PopulateRequests folds, in order: form or origin inputs, auth-token
// attributes (namespaced), owner auto-assignment for RA submissions, the
// authenticator's population hook and finally the profile's own. Later steps
// may rely on fields set by earlier ones.
func (p *RequestProcessor) PopulateRequests(ctx context.Context, input PopulateRequestsInput) error {
	lFunc := helpers.ConfigureLogger(ctx, p.logger)

	for _, request := range input.Requests {
		if request.ExtData == nil {
			request.ExtData = models.NewExtDataMap()
		}

		if input.Origin != nil {
			p.copyOriginEntries(input.Origin, request)
		} else {
			p.copyFormInputs(input.Inputs, request)
		}

		if input.AuthToken != nil {
			p.foldAuthToken(input.AuthToken, request)

			if p.raGroup != "" && input.AuthToken.IsMemberOf(p.raGroup) {
				request.Owner = input.AuthToken.UID
			}
		}

		if p.authenticator != nil {
			err := p.authenticator.PopulateRequest(ctx, input.AuthToken, request)
			if err != nil {
				lFunc.Errorf("authenticator population failed for request %s: %s", request.ID, err)
				return err
			}
		}

		if input.Profile != nil {
			err := input.Profile.PopulateRequest(ctx, request)
			if err != nil {
				lFunc.Errorf("profile population failed for request %s: %s", request.ID, err)
				return err
			}
		}
	}

	return nil
}

func (p *RequestProcessor) copyFormInputs(inputs map[string]string, request *models.Request) {
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		request.ExtData.Set(k, models.ExtString(inputs[k]))
	}
}

func (p *RequestProcessor) copyOriginEntries(origin *models.Request, request *models.Request) {
	for _, key := range []string{models.ExtCertInfo, models.ExtOldCerts, models.ExtOldSerials} {
		if v, ok := origin.ExtData.Get(key); ok {
			request.ExtData.Set(key, v)
		}
	}
}

// foldAuthToken namespaces every token claim under the auth-token prefix.
// Claims are written in sorted key order so the resulting extended data is
// deterministic. An external principal contributes its attributes the same
// way.
func (p *RequestProcessor) foldAuthToken(token *models.AuthToken, request *models.Request) {
	request.ExtData.Set(models.ExtAuthTokenPrefix+"uid", models.ExtString(token.UID))

	keys := make([]string, 0, len(token.Claims))
	for k := range token.Claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := token.Claims[k].(type) {
		case string:
			request.ExtData.Set(models.ExtAuthTokenPrefix+k, models.ExtString(v))
		case []string:
			request.ExtData.Set(models.ExtAuthTokenPrefix+k, models.ExtStrings(v))
		default:
			request.ExtData.Set(models.ExtAuthTokenPrefix+k, models.ExtString(fmt.Sprintf("%v", v)))
		}
	}

	if token.Principal != nil {
		pKeys := make([]string, 0, len(token.Principal.Attributes))
		for k := range token.Principal.Attributes {
			pKeys = append(pKeys, k)
		}
		sort.Strings(pKeys)

		request.ExtData.Set(models.ExtAuthTokenPrefix+"principal", models.ExtString(token.Principal.Name))
		for _, k := range pKeys {
			vals := token.Principal.Attributes[k]
			if len(vals) == 1 {
				request.ExtData.Set(models.ExtAuthTokenPrefix+k, models.ExtString(vals[0]))
			} else {
				request.ExtData.Set(models.ExtAuthTokenPrefix+k, models.ExtStrings(vals))
			}
		}
	}
}

type SubmitRequestsInput struct {
	Profile   RequestProfile
	AuthToken *models.AuthToken
	Requests  []*models.Request
}

// SubmitRequests executes the profile for each request of the batch. A
// deferral parks the request as PENDING and notifies; a rejection closes it
// as REJECTED; an unclassified failure records the internal error code. One
// failing request never aborts its siblings.
func (p *RequestProcessor) SubmitRequests(ctx context.Context, input SubmitRequestsInput) error {
	lFunc := helpers.ConfigureLogger(ctx, p.logger)

	requesterID := ""
	if input.AuthToken != nil {
		requesterID = input.AuthToken.UID
	}

	for _, request := range input.Requests {
		err := input.Profile.Execute(ctx, request)
		if err == nil {
			p.auditRequestProcessed(ctx, request, requesterID, models.AuditOutcomeSuccess, 0)

			serr := p.queue.MarkAsServiced(ctx, request)
			if serr != nil {
				lFunc.Errorf("could not persist serviced request %s: %s", request.ID, serr)
			}
			continue
		}

		var deferred *errs.DeferredError
		var rejected *errs.RejectedError

		switch {
		case errors.As(err, &deferred):
			lFunc.Infof("request %s deferred: %s", request.ID, deferred.Reason)
			request.Status = models.RequestStatusPending
			request.ExtData.Set(models.ExtErrorCode, models.ExtInt(models.ErrorCodeDeferred))
			p.auditRequestProcessed(ctx, request, requesterID, models.AuditOutcomeFailure, models.ErrorCodeDeferred)

			if p.notifier != nil {
				p.notifier.NotifyPending(ctx, request)
			}
		case errors.As(err, &rejected):
			lFunc.Infof("request %s rejected: %s", request.ID, rejected.Reason)
			request.Status = models.RequestStatusRejected
			request.Error = rejected.Reason
			request.ExtData.Set(models.ExtErrorCode, models.ExtInt(models.ErrorCodeRejected))
			p.auditRequestProcessed(ctx, request, requesterID, models.AuditOutcomeFailure, models.ErrorCodeRejected)
		default:
			lFunc.Errorf("profile execution failed for request %s: %s", request.ID, err)
			request.Error = err.Error()
			request.ExtData.Set(models.ExtErrorCode, models.ExtInt(models.ErrorCodeInternal))
			p.auditRequestProcessed(ctx, request, requesterID, models.AuditOutcomeFailure, models.ErrorCodeInternal)
		}

		_, uerr := p.queue.UpdateRequest(ctx, request)
		if uerr != nil {
			lFunc.Errorf("could not persist request %s: %s", request.ID, uerr)
		}
	}

	return nil
}

func (p *RequestProcessor) auditRequestProcessed(ctx context.Context, request *models.Request, requesterID string, outcome models.AuditOutcome, errorCode int64) {
	if p.eventPublisher == nil {
		return
	}

	ctx = context.WithValue(ctx, veridia.ContextKeyEventType, models.EventRequestUpdateKey)
	ctx = context.WithValue(ctx, veridia.ContextKeyEventSubject, fmt.Sprintf("request/%s", request.ID))

	p.eventPublisher.PublishCloudEvent(ctx, models.RequestProcessedEvent{
		RequestID:     request.ID,
		Outcome:       outcome,
		RequesterID:   requesterID,
		ErrorCode:     errorCode,
		RequestStatus: request.Status,
	})
}
