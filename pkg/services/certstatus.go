package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
)

// CertStatusChangeService is the queue's service stage for revocation and
// unrevocation requests. It is the final arbiter on certificate status: two
// concurrent revocations can both pass processor validation, but only the
// first one flips the record here - the second gets an already-revoked entry
// in the request's service-error list.
type CertStatusChangeService struct {
	logger    *logrus.Entry
	certsRepo storage.CertificatesRepo
	ipService IssuingPointService
}

type CertStatusChangeBuilder struct {
	Logger              *logrus.Entry
	CertificatesRepo    storage.CertificatesRepo
	IssuingPointService IssuingPointService
}

func NewCertStatusChangeService(builder CertStatusChangeBuilder) *CertStatusChangeService {
	return &CertStatusChangeService{
		logger:    builder.Logger,
		certsRepo: builder.CertificatesRepo,
		ipService: builder.IssuingPointService,
	}
}

func (svc *CertStatusChangeService) ServiceRequest(ctx context.Context, request *models.Request) error {
	switch request.Type {
	case models.RequestTypeRevocation:
		return svc.serviceRevocation(ctx, request)
	case models.RequestTypeUnrevocation:
		return svc.serviceUnrevocation(ctx, request)
	default:
		return fmt.Errorf("unsupported request type %s", request.Type)
	}
}

func (svc *CertStatusChangeService) serviceRevocation(ctx context.Context, request *models.Request) error {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	entries, ok := request.ExtData.GetRevoked(models.ExtRevokedCerts)
	if !ok || len(entries) == 0 {
		return fmt.Errorf("revocation request %s carries no revoked certificates", request.ID)
	}

	reason := models.RevocationReasonUnspecified
	if code, ok := request.ExtData.GetInt(models.ExtRevokedReason); ok {
		reason = models.RevocationReason(code)
	}

	var invalidityDate *time.Time
	if v, ok := request.ExtData.Get(models.ExtInvalidityDate); ok && v.Kind == models.ExtKindDate {
		d := v.Date
		invalidityDate = &d
	}

	points := svc.issuingPoints(ctx)

	serviceErrors := []string{}
	touched := false

	// results keep the order the certificates were queued in
	for _, entry := range entries {
		exists, record, err := svc.certsRepo.SelectExistsBySerialNumber(ctx, entry.SerialNumber)
		if err != nil {
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: %s", entry.SerialNumber, err))
			continue
		}

		if !exists {
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: certificate not found", entry.SerialNumber))
			continue
		}

		if record.Status == models.StatusRevoked {
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: certificate already revoked", entry.SerialNumber))
			continue
		}

		if record.Status == models.StatusExpired {
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: cannot revoke an expired certificate", entry.SerialNumber))
			continue
		}

		record.Status = models.StatusRevoked
		record.RevokedBy = request.Owner
		record.RevocationTimestamp = entry.RevocationTime
		record.RevocationReason = reason
		record.InvalidityDate = invalidityDate

		_, err = svc.certsRepo.Update(ctx, record)
		if err != nil {
			lFunc.Errorf("could not update certificate %s: %s", entry.SerialNumber, err)
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: %s", entry.SerialNumber, err))
			continue
		}

		touched = true
		lFunc.Infof("certificate %s revoked with reason %s", entry.SerialNumber, reason)

		for _, point := range points {
			err = svc.ipService.AddRevokedCert(ctx, AddRevokedCertInput{
				IssuingPointID: point.ID,
				Entry:          entry,
			})
			if err != nil {
				lFunc.Warnf("could not queue %s on issuing point %s: %s", entry.SerialNumber, point.ID, err)
			}
		}
	}

	if touched {
		svc.refreshIssuingPoints(ctx, request, points)
	}

	if len(serviceErrors) > 0 {
		request.Result = models.ResultError
		request.ServiceErrors = append(request.ServiceErrors, serviceErrors...)
	}

	return nil
}

func (svc *CertStatusChangeService) serviceUnrevocation(ctx context.Context, request *models.Request) error {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	serials, ok := request.ExtData.GetStrings(models.ExtOldSerials)
	if !ok || len(serials) == 0 {
		return fmt.Errorf("unrevocation request %s carries no serial numbers", request.ID)
	}

	points := svc.issuingPoints(ctx)

	serviceErrors := []string{}
	touched := false

	for _, serial := range serials {
		exists, record, err := svc.certsRepo.SelectExistsBySerialNumber(ctx, serial)
		if err != nil {
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: %s", serial, err))
			continue
		}

		if !exists {
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: certificate not found", serial))
			continue
		}

		if record.Status != models.StatusRevoked {
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: certificate is not revoked", serial))
			continue
		}

		if record.RevocationReason != models.RevocationReasonCertificateHold {
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: only certificates on hold can be unrevoked", serial))
			continue
		}

		record.Status = models.StatusValid
		record.RevokedBy = ""
		record.RevocationTimestamp = time.Time{}
		record.RevocationReason = models.RevocationReasonUnspecified
		record.InvalidityDate = nil

		_, err = svc.certsRepo.Update(ctx, record)
		if err != nil {
			lFunc.Errorf("could not update certificate %s: %s", serial, err)
			serviceErrors = append(serviceErrors, fmt.Sprintf("%s: %s", serial, err))
			continue
		}

		touched = true
		lFunc.Infof("certificate %s taken off hold", serial)

		for _, point := range points {
			err = svc.ipService.AddUnrevokedCert(ctx, AddUnrevokedCertInput{
				IssuingPointID: point.ID,
				SerialNumber:   serial,
			})
			if err != nil {
				lFunc.Warnf("could not queue %s on issuing point %s: %s", serial, point.ID, err)
			}
		}
	}

	if touched {
		svc.refreshIssuingPoints(ctx, request, points)
	}

	if len(serviceErrors) > 0 {
		request.Result = models.ResultError
		request.ServiceErrors = append(request.ServiceErrors, serviceErrors...)
	}

	return nil
}

func (svc *CertStatusChangeService) issuingPoints(ctx context.Context) []models.IssuingPoint {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	points := []models.IssuingPoint{}
	_, err := svc.ipService.GetIssuingPoints(ctx, GetIssuingPointsInput{
		ListInput: resources.ListInput[models.IssuingPoint]{
			ExhaustiveRun: true,
			ApplyFunc: func(point models.IssuingPoint) {
				if point.GenerationEnabled {
					points = append(points, point)
				}
			},
		},
	})
	if err != nil {
		lFunc.Warnf("could not list issuing points: %s", err)
	}

	return points
}

// refreshIssuingPoints regenerates regenerate-on-revoke issuing points that
// are idle, then stamps each point's update/publish outcome into the
// request's extended data for the caller's report.
func (svc *CertStatusChangeService) refreshIssuingPoints(ctx context.Context, request *models.Request, points []models.IssuingPoint) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	for _, point := range points {
		if point.RegenerateOnRevoke && point.Initialized {
			_, err := svc.ipService.CalculateCRL(ctx, CalculateCRLInput{IssuingPointID: point.ID})
			if err != nil {
				lFunc.Errorf("could not regenerate CRL for issuing point %s: %s", point.ID, err)
			}
		}

		refreshed, err := svc.ipService.GetIssuingPointByID(ctx, GetIssuingPointByIDInput{ID: point.ID})
		if err != nil {
			lFunc.Warnf("could not read back issuing point %s: %s", point.ID, err)
			continue
		}

		request.ExtData.Set(refreshed.CRLUpdateStatusKey(), models.ExtString(refreshed.UpdateStatus))
		if refreshed.UpdateError != "" {
			request.ExtData.Set(refreshed.CRLUpdateErrorKey(), models.ExtString(refreshed.UpdateError))
		}
		request.ExtData.Set(refreshed.CRLPublishStatusKey(), models.ExtString(refreshed.PublishStatus))
		if refreshed.PublishError != "" {
			request.ExtData.Set(refreshed.CRLPublishErrorKey(), models.ExtString(refreshed.PublishError))
		}
	}
}
