package services

import (
	"context"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/eventpub"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
)

var revocationValidate *validator.Validate

// SubsystemGroupChecker resolves a TLS client certificate to a user identity
// and reports subsystem-group membership. Trusted subsystem callers skip
// nonce validation.
type SubsystemGroupChecker interface {
	IsMember(ctx context.Context, clientCert *x509.Certificate) (bool, error)
}

// RevocationSettings is the full configuration of one status-change action,
// fixed at processor construction. There is no way to mutate it afterwards:
// the validation and extension-building steps read a consistent snapshot.
type RevocationSettings struct {
	Authority      string
	SerialNumber   string
	Reason         models.RevocationReason
	InvalidityDate *time.Time
	Comments       string
	Initiative     string
	RequesterID    string
	RequestType    models.RequestType
	RevokingCACert bool
}

// NewCRLEntryExtensions builds the CRL entry-extension set shared by every
// certificate of one revocation batch: the reason-code extension always, the
// invalidity-date extension only when a date was supplied. Pure, no I/O.
func NewCRLEntryExtensions(reason models.RevocationReason, invalidityDate *time.Time) ([]pkix.Extension, error) {
	reasonVal, err := asn1.Marshal(asn1.Enumerated(reason))
	if err != nil {
		return nil, fmt.Errorf("%w: reason code %d: %s", errs.ErrEncodeExtension, reason, err)
	}

	extensions := []pkix.Extension{
		{
			Id:    []int{2, 5, 29, 21},
			Value: reasonVal,
		},
	}

	if invalidityDate != nil {
		ext, err := invalidityDateExtension(*invalidityDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalidity date: %s", errs.ErrEncodeExtension, err)
		}
		extensions = append(extensions, *ext)
	}

	return extensions, nil
}

// IsCASelfSigned reports whether the record is the CA's own self-issued
// signing certificate: the serial matches the CA certificate's serial and
// the CA certificate has subject == issuer.
func IsCASelfSigned(record *models.Certificate, caCert *x509.Certificate) bool {
	if record == nil || caCert == nil {
		return false
	}

	if record.SerialNumber != helpers.SerialNumberToHexString(caCert.SerialNumber) {
		return false
	}

	return caCert.Subject.String() == caCert.Issuer.String()
}

// RevocationProcessor orchestrates one revocation or unrevocation action:
// validation, CRL-extension construction, request creation, submission,
// result interpretation and audit. Construct one per action.
type RevocationProcessor struct {
	logger          *logrus.Entry
	settings        RevocationSettings
	queue           RequestQueueService
	certsRepo       storage.CertificatesRepo
	caCert          *x509.Certificate
	groupChecker    SubsystemGroupChecker
	eventPublisher  eventpub.ICloudEventPublisher
	entryExtensions []pkix.Extension
	certificates    []*models.X509Certificate
	revoked         []models.RevokedCertificate
	serials         []string
}

type RevocationProcessorBuilder struct {
	Logger           *logrus.Entry
	Settings         RevocationSettings
	Queue            RequestQueueService
	CertificatesRepo storage.CertificatesRepo
	CACertificate    *x509.Certificate
	GroupChecker     SubsystemGroupChecker
	EventPublisher   eventpub.ICloudEventPublisher
}

func NewRevocationProcessor(builder RevocationProcessorBuilder) (*RevocationProcessor, error) {
	extensions, err := NewCRLEntryExtensions(builder.Settings.Reason, builder.Settings.InvalidityDate)
	if err != nil {
		return nil, err
	}

	return &RevocationProcessor{
		logger:          builder.Logger,
		settings:        builder.Settings,
		queue:           builder.Queue,
		certsRepo:       builder.CertificatesRepo,
		caCert:          builder.CACertificate,
		groupChecker:    builder.GroupChecker,
		eventPublisher:  builder.EventPublisher,
		entryExtensions: extensions,
	}, nil
}

// EntryExtensions returns the shared extension bundle built at construction.
func (p *RevocationProcessor) EntryExtensions() []pkix.Extension {
	return p.entryExtensions
}

// ValidateCertificateToRevoke enforces, in order: (1) a non-empty caller
// subject DN must equal the target's subject DN, (2) the target is the CA's
// self-signed signing certificate iff the caller declared a CA revocation,
// (3) the target is not already revoked. The identity check runs before the
// status check so a forged-identity attempt never learns another subject's
// revocation state.
func (p *RevocationProcessor) ValidateCertificateToRevoke(subjectDN string, record *models.Certificate) error {
	if subjectDN != "" && subjectDN != record.SubjectDN {
		return fmt.Errorf("%w: %w", errs.ErrUnauthorized, errs.ErrSubjectMismatch)
	}

	selfSigned := IsCASelfSigned(record, p.caCert)
	if selfSigned && !p.settings.RevokingCACert {
		return fmt.Errorf("%w: %w", errs.ErrUnauthorized, errs.ErrCACertificateProtected)
	}
	if !selfSigned && p.settings.RevokingCACert {
		return fmt.Errorf("%w: %w", errs.ErrUnauthorized, errs.ErrNotCACertificate)
	}

	if record.Status == models.StatusRevoked {
		return errs.ErrCertificateAlreadyRevoked
	}

	return nil
}

// AddCertificateToRevoke queues the certificate for revocation. Insertion
// order is preserved: batch results are reported back in the same order.
func (p *RevocationProcessor) AddCertificateToRevoke(record *models.Certificate) {
	p.certificates = append(p.certificates, record.Certificate)
	p.serials = append(p.serials, record.SerialNumber)
	p.revoked = append(p.revoked, models.RevokedCertificate{
		SerialNumber:    record.SerialNumber,
		RevocationTime:  time.Now(),
		EntryExtensions: p.entryExtensions,
	})
}

func (p *RevocationProcessor) AddSerialNumberToUnrevoke(ctx context.Context, serialNumber string) error {
	exists, record, err := p.certsRepo.SelectExistsBySerialNumber(ctx, serialNumber)
	if err != nil {
		return err
	}

	if !exists {
		return errs.ErrCertificateNotFound
	}

	p.certificates = append(p.certificates, record.Certificate)
	p.serials = append(p.serials, record.SerialNumber)
	return nil
}

func (p *RevocationProcessor) requestorType() models.RequestorType {
	if p.settings.Initiative == models.InitiativeEndEntity {
		return models.RequestorTypeEE
	}
	return models.RequestorTypeAgent
}

// CreateRevocationRequest materializes the working set into a new request of
// the configured type. It does not submit.
func (p *RevocationProcessor) CreateRevocationRequest(ctx context.Context) (*models.Request, error) {
	extData := models.NewExtDataMap()
	extData.Set(models.ExtReqType, models.ExtString(string(p.settings.RequestType)))
	extData.Set(models.ExtRequestorType, models.ExtString(string(p.requestorType())))
	extData.Set(models.ExtOldCerts, models.ExtCerts(p.certificates))
	extData.Set(models.ExtRevokedCerts, models.ExtRevoked(p.revoked))
	extData.Set(models.ExtRevokedReason, models.ExtInt(int64(p.settings.Reason)))
	if p.settings.InvalidityDate != nil {
		extData.Set(models.ExtInvalidityDate, models.ExtDate(*p.settings.InvalidityDate))
	}
	if p.settings.Comments != "" {
		extData.Set(models.ExtRequestorComments, models.ExtString(p.settings.Comments))
	}

	return p.queue.CreateRequest(ctx, CreateRequestInput{
		Type:          p.settings.RequestType,
		RequestorType: p.requestorType(),
		Owner:         p.settings.RequesterID,
		ExtData:       extData,
	})
}

func (p *RevocationProcessor) CreateUnrevocationRequest(ctx context.Context) (*models.Request, error) {
	extData := models.NewExtDataMap()
	extData.Set(models.ExtReqType, models.ExtString(string(p.settings.RequestType)))
	extData.Set(models.ExtRequestorType, models.ExtString(string(p.requestorType())))
	extData.Set(models.ExtOldCerts, models.ExtCerts(p.certificates))
	extData.Set(models.ExtOldSerials, models.ExtStrings(p.serials))
	if p.settings.Comments != "" {
		extData.Set(models.ExtRequestorComments, models.ExtString(p.settings.Comments))
	}

	return p.queue.CreateRequest(ctx, CreateRequestInput{
		Type:          p.settings.RequestType,
		RequestorType: p.requestorType(),
		Owner:         p.settings.RequesterID,
		ExtData:       extData,
	})
}

// ProcessRevocationRequest submits the request to the queue and interprets
// the status the queue left behind. COMPLETE is success; SVC_PENDING counts
// as success only for replica-propagation requests. Everything else is
// reported through the returned status, not an error - except RES_ERROR on a
// COMPLETE request, which escalates to a ServiceError.
func (p *RevocationProcessor) ProcessRevocationRequest(ctx context.Context, request *models.Request) (models.RequestStatus, error) {
	return p.processStatusChangeRequest(ctx, request)
}

func (p *RevocationProcessor) ProcessUnrevocationRequest(ctx context.Context, request *models.Request) (models.RequestStatus, error) {
	return p.processStatusChangeRequest(ctx, request)
}

func (p *RevocationProcessor) processStatusChangeRequest(ctx context.Context, request *models.Request) (models.RequestStatus, error) {
	lFunc := helpers.ConfigureLogger(ctx, p.logger)

	p.AuditChangeRequest(ctx, models.AuditOutcomeSuccess)

	err := p.queue.ProcessRequest(ctx, request)
	if err != nil {
		lFunc.Errorf("queue submission failed for request %s: %s", request.ID, err)
		p.AuditChangeRequestProcessed(ctx, request, models.AuditOutcomeFailure)
		return request.Status, err
	}

	if request.Status == models.RequestStatusComplete && request.Result == models.ResultError {
		p.AuditChangeRequestProcessed(ctx, request, models.AuditOutcomeFailure)
		return request.Status, &errs.ServiceError{
			RequestID: request.ID,
			Errors:    request.ServiceErrors,
		}
	}

	switch request.Status {
	case models.RequestStatusComplete:
		p.AuditChangeRequestProcessed(ctx, request, models.AuditOutcomeSuccess)
	case models.RequestStatusSvcPending:
		if request.Type == models.RequestTypeReplicaPropagation {
			lFunc.Infof("request %s awaiting replica propagation", request.ID)
		} else {
			lFunc.Warnf("request %s left in SVC_PENDING for non-propagation type %s", request.ID, request.Type)
		}
	case models.RequestStatusRejected, models.RequestStatusCanceled:
		p.AuditChangeRequestProcessed(ctx, request, models.AuditOutcomeFailure)
	default:
		lFunc.Infof("request %s ended non-terminal: %s", request.ID, request.Status)
	}

	return request.Status, nil
}

// IsMemberOfSubsystemGroup reports whether the TLS client certificate maps
// to a subsystem-group member. Lookup failures count as non-membership,
// never as an error: the result only decides whether nonce validation is
// skipped.
func (p *RevocationProcessor) IsMemberOfSubsystemGroup(ctx context.Context, clientCert *x509.Certificate) bool {
	if clientCert == nil || p.groupChecker == nil {
		return false
	}

	member, err := p.groupChecker.IsMember(ctx, clientCert)
	if err != nil {
		helpers.ConfigureLogger(ctx, p.logger).Warnf("subsystem group lookup failed: %s", err)
		return false
	}

	return member
}

func (p *RevocationProcessor) IsSystemCertificate(record *models.Certificate) bool {
	return IsCASelfSigned(record, p.caCert)
}

func (p *RevocationProcessor) auditRequestType() string {
	if p.settings.RequestType == models.RequestTypeUnrevocation {
		return models.AuditRequestTypeOffHold
	}
	if p.settings.Reason == models.RevocationReasonCertificateHold {
		return models.AuditRequestTypeOnHold
	}
	return models.AuditRequestTypeRevoke
}

func (p *RevocationProcessor) auditSerial() string {
	if p.settings.SerialNumber == "" {
		return models.AuditSerialEmpty
	}
	return "0x" + p.settings.SerialNumber
}

// AuditChangeRequest emits the pre-submission audit event.
func (p *RevocationProcessor) AuditChangeRequest(ctx context.Context, outcome models.AuditOutcome) {
	if p.eventPublisher == nil {
		return
	}

	ctx = context.WithValue(ctx, veridia.ContextKeyEventType, models.EventCertStatusChangeRequestKey)
	ctx = context.WithValue(ctx, veridia.ContextKeyEventSubject, fmt.Sprintf("certificate/%s", p.settings.SerialNumber))

	p.eventPublisher.PublishCloudEvent(ctx, models.CertStatusChangeRequestEvent{
		SubjectID:    p.settings.Authority,
		Outcome:      outcome,
		RequesterID:  p.settings.RequesterID,
		SerialNumber: p.auditSerial(),
		RequestType:  p.auditRequestType(),
	})
}

// AuditChangeRequestProcessed emits the post-submission audit event, and only
// when the request reached COMPLETE, REJECTED or CANCELED. PENDING never
// produces an event: the filter is strict, not best-effort.
func (p *RevocationProcessor) AuditChangeRequestProcessed(ctx context.Context, request *models.Request, outcome models.AuditOutcome) {
	if p.eventPublisher == nil {
		return
	}

	if !request.Status.IsTerminal() {
		return
	}

	ctx = context.WithValue(ctx, veridia.ContextKeyEventType, models.EventCertStatusChangeProcessedKey)
	ctx = context.WithValue(ctx, veridia.ContextKeyEventSubject, fmt.Sprintf("request/%s", request.ID))

	p.eventPublisher.PublishCloudEvent(ctx, models.CertStatusChangeRequestProcessedEvent{
		SubjectID:     p.settings.Authority,
		Outcome:       outcome,
		RequesterID:   p.settings.RequesterID,
		SerialNumber:  p.auditSerial(),
		RequestType:   p.auditRequestType(),
		ReasonCode:    int(p.settings.Reason),
		RequestStatus: request.Status,
	})
}

type RevocationService interface {
	RevokeCertificate(ctx context.Context, input RevokeCertificateInput) (*models.Request, error)
	RevokeCertificatesByFilter(ctx context.Context, input RevokeCertificatesByFilterInput) (*models.Request, error)
	UnrevokeCertificate(ctx context.Context, input UnrevokeCertificateInput) (*models.Request, error)
	GetCertificateBySerialNumber(ctx context.Context, input GetCertificateBySerialNumberInput) (*models.Certificate, error)
	GetCertificates(ctx context.Context, input GetCertificatesInput) (string, error)
}

type RevokeCertificateInput struct {
	SerialNumber   string `validate:"required"`
	Reason         models.RevocationReason
	InvalidityDate *time.Time
	Comments       string
	SubjectDN      string
	Initiative     string
	RequesterID    string
	RevokingCACert bool
	Nonce          *int64
	SessionID      string
	ClientCert     *x509.Certificate
}

type RevokeCertificatesByFilterInput struct {
	QueryParameters *resources.QueryParameters `validate:"required"`
	Reason          models.RevocationReason
	InvalidityDate  *time.Time
	Comments        string
	Initiative      string
	RequesterID     string
}

type UnrevokeCertificateInput struct {
	SerialNumber string `validate:"required"`
	Comments     string
	Initiative   string
	RequesterID  string
	Nonce        *int64
	SessionID    string
	ClientCert   *x509.Certificate
}

type GetCertificateBySerialNumberInput struct {
	SerialNumber string `validate:"required"`
}

type GetCertificatesInput struct {
	resources.ListInput[models.Certificate]
}

type RevocationServiceBackend struct {
	logger         *logrus.Entry
	certsRepo      storage.CertificatesRepo
	queue          RequestQueueService
	caCert         *x509.Certificate
	groupChecker   SubsystemGroupChecker
	eventPublisher eventpub.ICloudEventPublisher
	nonces         *NonceManager
	searchLimit    int
	searchTime     time.Duration
	allowOnHold    bool
	service        RevocationService
}

type RevocationServiceBuilder struct {
	Logger           *logrus.Entry
	CertificatesRepo storage.CertificatesRepo
	Queue            RequestQueueService
	CACertificate    *x509.Certificate
	GroupChecker     SubsystemGroupChecker
	EventPublisher   eventpub.ICloudEventPublisher
	Nonces           *NonceManager
	SearchLimit      int
	SearchTime       time.Duration
	// AllowOnHold enables the CertificateHold revocation reason. When
	// disabled, hold requests fail as unauthorized; releasing an existing
	// hold stays permitted.
	AllowOnHold bool
}

type RevocationMiddleware func(RevocationService) RevocationService

func NewRevocationService(builder RevocationServiceBuilder) RevocationService {
	revocationValidate = validator.New()

	searchLimit := builder.SearchLimit
	if searchLimit <= 0 {
		searchLimit = 500
	}

	searchTime := builder.SearchTime
	if searchTime <= 0 {
		searchTime = 30 * time.Second
	}

	svc := &RevocationServiceBackend{
		logger:           builder.Logger,
		certsRepo:        builder.CertificatesRepo,
		queue:            builder.Queue,
		caCert:           builder.CACertificate,
		groupChecker:     builder.GroupChecker,
		eventPublisher:   builder.EventPublisher,
		nonces:           builder.Nonces,
		searchLimit:      searchLimit,
		searchTime:       searchTime,
		allowOnHold:      builder.AllowOnHold,
	}

	svc.service = svc

	return svc
}

func (svc *RevocationServiceBackend) SetService(service RevocationService) {
	svc.service = service
}

func (svc *RevocationServiceBackend) newProcessor(settings RevocationSettings) (*RevocationProcessor, error) {
	return NewRevocationProcessor(RevocationProcessorBuilder{
		Logger:           svc.logger,
		Settings:         settings,
		Queue:            svc.queue,
		CertificatesRepo: svc.certsRepo,
		CACertificate:    svc.caCert,
		GroupChecker:     svc.groupChecker,
		EventPublisher:   svc.eventPublisher,
	})
}

// verifyNonce enforces replay protection for session-scoped callers. Trusted
// subsystem members (per client certificate) are exempt.
func (svc *RevocationServiceBackend) verifyNonce(ctx context.Context, proc *RevocationProcessor, sessionID string, operation string, serialNumber string, nonce *int64, clientCert *x509.Certificate) error {
	if svc.nonces == nil {
		return nil
	}

	if proc.IsMemberOfSubsystemGroup(ctx, clientCert) {
		return nil
	}

	if nonce == nil {
		return errs.ErrNonceNotFound
	}

	return svc.nonces.Verify(sessionID, operation, serialNumber, *nonce)
}

func (svc *RevocationServiceBackend) RevokeCertificate(ctx context.Context, input RevokeCertificateInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := revocationValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	if input.Reason == models.RevocationReasonCertificateHold && !svc.allowOnHold {
		lFunc.Errorf("rejecting on-hold revocation for certificate %s: holds are disabled", input.SerialNumber)
		return nil, fmt.Errorf("%w: %w", errs.ErrUnauthorized, errs.ErrOnHoldNotAllowed)
	}

	settings := RevocationSettings{
		Authority:      svc.authorityID(),
		SerialNumber:   input.SerialNumber,
		Reason:         input.Reason,
		InvalidityDate: input.InvalidityDate,
		Comments:       input.Comments,
		Initiative:     input.Initiative,
		RequesterID:    input.RequesterID,
		RequestType:    models.RequestTypeRevocation,
		RevokingCACert: input.RevokingCACert,
	}

	proc, err := svc.newProcessor(settings)
	if err != nil {
		lFunc.Errorf("could not build CRL entry extensions: %s", err)
		return nil, err
	}

	err = svc.verifyNonce(ctx, proc, input.SessionID, NonceOpRevoke, input.SerialNumber, input.Nonce, input.ClientCert)
	if err != nil {
		proc.AuditChangeRequest(ctx, models.AuditOutcomeFailure)
		return nil, err
	}

	exists, record, err := svc.certsRepo.SelectExistsBySerialNumber(ctx, input.SerialNumber)
	if err != nil {
		lFunc.Errorf("something went wrong while reading certificate %s: %s", input.SerialNumber, err)
		return nil, err
	}

	if !exists {
		lFunc.Errorf("certificate %s can not be found in storage engine", input.SerialNumber)
		proc.AuditChangeRequest(ctx, models.AuditOutcomeFailure)
		return nil, errs.ErrCertificateNotFound
	}

	err = proc.ValidateCertificateToRevoke(input.SubjectDN, record)
	if err != nil {
		lFunc.Errorf("certificate %s failed revocation validation: %s", input.SerialNumber, err)
		proc.AuditChangeRequest(ctx, models.AuditOutcomeFailure)
		return nil, err
	}

	proc.AddCertificateToRevoke(record)

	request, err := proc.CreateRevocationRequest(ctx)
	if err != nil {
		return nil, err
	}

	_, err = proc.ProcessRevocationRequest(ctx, request)
	return request, err
}

// RevokeCertificatesByFilter queues one revocation request covering every
// certificate the filtered search returns, bounded by the configured search
// limit and time budget. Certificates failing validation are skipped with a
// warning; the batch keeps the search result order.
func (svc *RevocationServiceBackend) RevokeCertificatesByFilter(ctx context.Context, input RevokeCertificatesByFilterInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := revocationValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	if input.Reason == models.RevocationReasonCertificateHold && !svc.allowOnHold {
		lFunc.Errorf("rejecting on-hold batch revocation: holds are disabled")
		return nil, fmt.Errorf("%w: %w", errs.ErrUnauthorized, errs.ErrOnHoldNotAllowed)
	}

	settings := RevocationSettings{
		Authority:      svc.authorityID(),
		Reason:         input.Reason,
		InvalidityDate: input.InvalidityDate,
		Comments:       input.Comments,
		Initiative:     input.Initiative,
		RequesterID:    input.RequesterID,
		RequestType:    models.RequestTypeRevocation,
	}

	proc, err := svc.newProcessor(settings)
	if err != nil {
		return nil, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, svc.searchTime)
	defer cancel()

	queryParams := *input.QueryParameters
	if queryParams.PageSize <= 0 || queryParams.PageSize > svc.searchLimit {
		queryParams.PageSize = svc.searchLimit
	}

	matched := 0
	_, err = svc.certsRepo.SelectAll(searchCtx, storage.StorageListRequest[models.Certificate]{
		QueryParams: &queryParams,
		ApplyFunc: func(record models.Certificate) {
			if matched >= svc.searchLimit {
				return
			}
			matched++

			verr := proc.ValidateCertificateToRevoke("", &record)
			if verr != nil {
				lFunc.Warnf("skipping certificate %s: %s", record.SerialNumber, verr)
				return
			}

			proc.AddCertificateToRevoke(&record)
		},
	})
	if err != nil {
		lFunc.Errorf("certificate search failed: %s", err)
		return nil, err
	}

	if len(proc.revoked) == 0 {
		return nil, errs.ErrCertificateNotFound
	}

	request, err := proc.CreateRevocationRequest(ctx)
	if err != nil {
		return nil, err
	}

	_, err = proc.ProcessRevocationRequest(ctx, request)
	return request, err
}

func (svc *RevocationServiceBackend) UnrevokeCertificate(ctx context.Context, input UnrevokeCertificateInput) (*models.Request, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := revocationValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	settings := RevocationSettings{
		Authority:    svc.authorityID(),
		SerialNumber: input.SerialNumber,
		Reason:       models.RevocationReasonCertificateHold,
		Comments:     input.Comments,
		Initiative:   input.Initiative,
		RequesterID:  input.RequesterID,
		RequestType:  models.RequestTypeUnrevocation,
	}

	proc, err := svc.newProcessor(settings)
	if err != nil {
		return nil, err
	}

	err = svc.verifyNonce(ctx, proc, input.SessionID, NonceOpUnrevoke, input.SerialNumber, input.Nonce, input.ClientCert)
	if err != nil {
		proc.AuditChangeRequest(ctx, models.AuditOutcomeFailure)
		return nil, err
	}

	err = proc.AddSerialNumberToUnrevoke(ctx, input.SerialNumber)
	if err != nil {
		lFunc.Errorf("certificate %s can not be queued for unrevocation: %s", input.SerialNumber, err)
		proc.AuditChangeRequest(ctx, models.AuditOutcomeFailure)
		return nil, err
	}

	request, err := proc.CreateUnrevocationRequest(ctx)
	if err != nil {
		return nil, err
	}

	_, err = proc.ProcessUnrevocationRequest(ctx, request)
	return request, err
}

func (svc *RevocationServiceBackend) GetCertificateBySerialNumber(ctx context.Context, input GetCertificateBySerialNumberInput) (*models.Certificate, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := revocationValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	exists, record, err := svc.certsRepo.SelectExistsBySerialNumber(ctx, input.SerialNumber)
	if err != nil {
		lFunc.Errorf("something went wrong while reading certificate %s: %s", input.SerialNumber, err)
		return nil, err
	}

	if !exists {
		return nil, errs.ErrCertificateNotFound
	}

	return record, nil
}

func (svc *RevocationServiceBackend) GetCertificates(ctx context.Context, input GetCertificatesInput) (string, error) {
	return svc.certsRepo.SelectAll(ctx, storage.StorageListRequest[models.Certificate]{
		ExhaustiveRun: input.ExhaustiveRun,
		QueryParams:   input.QueryParameters,
		ApplyFunc:     input.ApplyFunc,
	})
}

func (svc *RevocationServiceBackend) authorityID() string {
	if svc.caCert == nil {
		return ""
	}
	return svc.caCert.Subject.CommonName
}
