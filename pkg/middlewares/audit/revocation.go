package auditpub

import (
	"context"

	"github.com/veridiapki/veridia/pkg/eventpub"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/services"
)

type RevocationAuditEventPublisher struct {
	next     services.RevocationService
	auditPub AuditPublisher
}

func NewRevocationAuditEventPublisher(audit eventpub.ICloudEventPublisher) services.RevocationMiddleware {
	return func(next services.RevocationService) services.RevocationService {
		return &RevocationAuditEventPublisher{
			next: next,
			auditPub: AuditPublisher{
				ICloudEventPublisher: eventpub.NewEventPublisherWithSourceMiddleware(audit, models.CASource),
			},
		}
	}
}

func (mw *RevocationAuditEventPublisher) RevokeCertificate(ctx context.Context, input services.RevokeCertificateInput) (output *models.Request, err error) {
	defer func() {
		mw.auditPub.HandleServiceOutputAndPublishAuditRecord(ctx, models.EventCertStatusChangeRequestKey, input, err, output)
	}()

	return mw.next.RevokeCertificate(ctx, input)
}

func (mw *RevocationAuditEventPublisher) RevokeCertificatesByFilter(ctx context.Context, input services.RevokeCertificatesByFilterInput) (output *models.Request, err error) {
	defer func() {
		mw.auditPub.HandleServiceOutputAndPublishAuditRecord(ctx, models.EventCertStatusChangeRequestKey, input, err, output)
	}()

	return mw.next.RevokeCertificatesByFilter(ctx, input)
}

func (mw *RevocationAuditEventPublisher) UnrevokeCertificate(ctx context.Context, input services.UnrevokeCertificateInput) (output *models.Request, err error) {
	defer func() {
		mw.auditPub.HandleServiceOutputAndPublishAuditRecord(ctx, models.EventCertStatusChangeRequestKey, input, err, output)
	}()

	return mw.next.UnrevokeCertificate(ctx, input)
}

func (mw *RevocationAuditEventPublisher) GetCertificateBySerialNumber(ctx context.Context, input services.GetCertificateBySerialNumberInput) (*models.Certificate, error) {
	return mw.next.GetCertificateBySerialNumber(ctx, input)
}

func (mw *RevocationAuditEventPublisher) GetCertificates(ctx context.Context, input services.GetCertificatesInput) (string, error) {
	return mw.next.GetCertificates(ctx, input)
}
