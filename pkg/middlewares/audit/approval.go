package auditpub

import (
	"context"

	"github.com/veridiapki/veridia/pkg/eventpub"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/services"
)

type ApprovalAuditEventPublisher struct {
	next     services.ApprovalService
	auditPub AuditPublisher
}

func NewApprovalAuditEventPublisher(audit eventpub.ICloudEventPublisher) services.ApprovalMiddleware {
	return func(next services.ApprovalService) services.ApprovalService {
		return &ApprovalAuditEventPublisher{
			next: next,
			auditPub: AuditPublisher{
				ICloudEventPublisher: eventpub.NewEventPublisherWithSourceMiddleware(audit, models.CASource),
			},
		}
	}
}

func (mw *ApprovalAuditEventPublisher) ApproveRequest(ctx context.Context, input services.ApproveRequestInput) (output *models.Request, err error) {
	defer func() {
		mw.auditPub.HandleServiceOutputAndPublishAuditRecord(ctx, models.EventRequestApproveKey, input, err, output)
	}()

	return mw.next.ApproveRequest(ctx, input)
}

func (mw *ApprovalAuditEventPublisher) RejectRequest(ctx context.Context, input services.RejectRequestInput) (output *models.Request, err error) {
	defer func() {
		mw.auditPub.HandleServiceOutputAndPublishAuditRecord(ctx, models.EventRequestRejectKey, input, err, output)
	}()

	return mw.next.RejectRequest(ctx, input)
}

func (mw *ApprovalAuditEventPublisher) CancelRequest(ctx context.Context, input services.CancelRequestInput) (output *models.Request, err error) {
	defer func() {
		mw.auditPub.HandleServiceOutputAndPublishAuditRecord(ctx, models.EventRequestCancelKey, input, err, output)
	}()

	return mw.next.CancelRequest(ctx, input)
}

func (mw *ApprovalAuditEventPublisher) AssignRequest(ctx context.Context, input services.AssignRequestInput) (output *models.Request, err error) {
	defer func() {
		mw.auditPub.HandleServiceOutputAndPublishAuditRecord(ctx, models.EventRequestAssignKey, input, err, output)
	}()

	return mw.next.AssignRequest(ctx, input)
}

func (mw *ApprovalAuditEventPublisher) UnassignRequest(ctx context.Context, input services.UnassignRequestInput) (output *models.Request, err error) {
	defer func() {
		mw.auditPub.HandleServiceOutputAndPublishAuditRecord(ctx, models.EventRequestUnassignKey, input, err, output)
	}()

	return mw.next.UnassignRequest(ctx, input)
}

func (mw *ApprovalAuditEventPublisher) UpdateRequestDefaults(ctx context.Context, input services.UpdateRequestDefaultsInput) (output *models.Request, err error) {
	defer func() {
		mw.auditPub.HandleServiceOutputAndPublishAuditRecord(ctx, models.EventRequestUpdateKey, input, err, output)
	}()

	return mw.next.UpdateRequestDefaults(ctx, input)
}

func (mw *ApprovalAuditEventPublisher) ValidateRequest(ctx context.Context, input services.ValidateRequestInput) (*models.Request, error) {
	return mw.next.ValidateRequest(ctx, input)
}
