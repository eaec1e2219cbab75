package services

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
)

var crlValidate *validator.Validate

type IssuingPointService interface {
	CreateIssuingPoint(ctx context.Context, input CreateIssuingPointInput) (*models.IssuingPoint, error)
	GetIssuingPoints(ctx context.Context, input GetIssuingPointsInput) (string, error)
	GetIssuingPointByID(ctx context.Context, input GetIssuingPointByIDInput) (*models.IssuingPoint, error)
	UpdateIssuingPoint(ctx context.Context, input UpdateIssuingPointInput) (*models.IssuingPoint, error)
	AddRevokedCert(ctx context.Context, input AddRevokedCertInput) error
	AddUnrevokedCert(ctx context.Context, input AddUnrevokedCertInput) error
	CalculateCRL(ctx context.Context, input CalculateCRLInput) (*x509.RevocationList, error)
	GetCRL(ctx context.Context, input GetCRLInput) (*x509.RevocationList, error)
}

type CreateIssuingPointInput struct {
	ID                 string `validate:"required"`
	Description        string
	Validity           models.TimeDuration `validate:"required"`
	RefreshInterval    models.TimeDuration
	RegenerateOnRevoke bool
	GenerationEnabled  bool
}

type GetIssuingPointsInput struct {
	resources.ListInput[models.IssuingPoint]
}

type GetIssuingPointByIDInput struct {
	ID string `validate:"required"`
}

type UpdateIssuingPointInput struct {
	ID                 string `validate:"required"`
	Description        string
	Validity           models.TimeDuration
	RefreshInterval    models.TimeDuration
	RegenerateOnRevoke bool
	GenerationEnabled  bool
}

type AddRevokedCertInput struct {
	IssuingPointID string                    `validate:"required"`
	Entry          models.RevokedCertificate `validate:"required"`
}

type AddUnrevokedCertInput struct {
	IssuingPointID string `validate:"required"`
	SerialNumber   string `validate:"required"`
}

type CalculateCRLInput struct {
	IssuingPointID string `validate:"required"`
}

type GetCRLInput struct {
	IssuingPointID string `validate:"required"`
}

type IssuingPointServiceBackend struct {
	logger              *logrus.Entry
	ipRepo              storage.IssuingPointsRepo
	certsRepo           storage.CertificatesRepo
	caCert              *x509.Certificate
	crlSigner           crypto.Signer
	distributionDomains []string
	service             IssuingPointService

	mu      sync.Mutex
	pending map[string][]models.RevokedCertificate
}

type IssuingPointServiceBuilder struct {
	Logger              *logrus.Entry
	IssuingPointsRepo   storage.IssuingPointsRepo
	CertificatesRepo    storage.CertificatesRepo
	CACertificate       *x509.Certificate
	CRLSigner           crypto.Signer
	DistributionDomains []string
}

type IssuingPointMiddleware func(IssuingPointService) IssuingPointService

func NewIssuingPointService(builder IssuingPointServiceBuilder) IssuingPointService {
	crlValidate = validator.New()

	svc := &IssuingPointServiceBackend{
		logger:              builder.Logger,
		ipRepo:              builder.IssuingPointsRepo,
		certsRepo:           builder.CertificatesRepo,
		caCert:              builder.CACertificate,
		crlSigner:           builder.CRLSigner,
		distributionDomains: builder.DistributionDomains,
		pending:             map[string][]models.RevokedCertificate{},
	}

	svc.service = svc

	return svc
}

func (svc *IssuingPointServiceBackend) SetService(service IssuingPointService) {
	svc.service = service
}

func (svc *IssuingPointServiceBackend) CreateIssuingPoint(ctx context.Context, input CreateIssuingPointInput) (*models.IssuingPoint, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := crlValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	point := &models.IssuingPoint{
		ID:                 input.ID,
		Description:        input.Description,
		CRLNumber:          models.BigInt{Int: big.NewInt(0)},
		Validity:           input.Validity,
		RefreshInterval:    input.RefreshInterval,
		RegenerateOnRevoke: input.RegenerateOnRevoke,
		GenerationEnabled:  input.GenerationEnabled,
		Initialized:        false,
		UpdateProgress:     models.CRLUpdateDone,
	}

	point, err = svc.ipRepo.Insert(ctx, point)
	if err != nil {
		lFunc.Errorf("could not insert issuing point %s: %s", input.ID, err)
		return nil, err
	}

	if !point.GenerationEnabled {
		return point, nil
	}

	// first CRL marks the point initialized
	_, err = svc.service.CalculateCRL(ctx, CalculateCRLInput{IssuingPointID: point.ID})
	if err != nil {
		lFunc.Errorf("something went wrong while calculating first CRL: %s", err)
		return nil, err
	}

	return svc.service.GetIssuingPointByID(ctx, GetIssuingPointByIDInput{ID: point.ID})
}

func (svc *IssuingPointServiceBackend) GetIssuingPoints(ctx context.Context, input GetIssuingPointsInput) (string, error) {
	return svc.ipRepo.SelectAll(ctx, storage.StorageListRequest[models.IssuingPoint]{
		ExhaustiveRun: input.ExhaustiveRun,
		QueryParams:   input.QueryParameters,
		ApplyFunc:     input.ApplyFunc,
	})
}

func (svc *IssuingPointServiceBackend) GetIssuingPointByID(ctx context.Context, input GetIssuingPointByIDInput) (*models.IssuingPoint, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := crlValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	exists, point, err := svc.ipRepo.SelectExistsByID(ctx, input.ID)
	if err != nil {
		lFunc.Errorf("something went wrong while reading issuing point %s: %s", input.ID, err)
		return nil, err
	}

	if !exists {
		return nil, errs.ErrIssuingPointNotFound
	}

	return point, nil
}

func (svc *IssuingPointServiceBackend) UpdateIssuingPoint(ctx context.Context, input UpdateIssuingPointInput) (*models.IssuingPoint, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := crlValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	point, err := svc.service.GetIssuingPointByID(ctx, GetIssuingPointByIDInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	point.Description = input.Description
	if input.Validity != 0 {
		point.Validity = input.Validity
	}
	point.RefreshInterval = input.RefreshInterval
	point.RegenerateOnRevoke = input.RegenerateOnRevoke
	point.GenerationEnabled = input.GenerationEnabled

	return svc.ipRepo.Update(ctx, point)
}

// AddRevokedCert queues one revoked entry for the issuing point. The entry
// becomes visible in the next calculated CRL; queueing alone never triggers
// generation.
func (svc *IssuingPointServiceBackend) AddRevokedCert(ctx context.Context, input AddRevokedCertInput) error {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := crlValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return errs.ErrValidateBadRequest
	}

	point, err := svc.service.GetIssuingPointByID(ctx, GetIssuingPointByIDInput{ID: input.IssuingPointID})
	if err != nil {
		return err
	}

	if !point.GenerationEnabled {
		return errs.ErrIssuingPointDisabled
	}

	svc.mu.Lock()
	svc.pending[point.ID] = append(svc.pending[point.ID], input.Entry)
	svc.mu.Unlock()

	return nil
}

func (svc *IssuingPointServiceBackend) AddUnrevokedCert(ctx context.Context, input AddUnrevokedCertInput) error {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := crlValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return errs.ErrValidateBadRequest
	}

	point, err := svc.service.GetIssuingPointByID(ctx, GetIssuingPointByIDInput{ID: input.IssuingPointID})
	if err != nil {
		return err
	}

	if !point.GenerationEnabled {
		return errs.ErrIssuingPointDisabled
	}

	svc.mu.Lock()
	entries := svc.pending[point.ID]
	filtered := entries[:0]
	for _, entry := range entries {
		if entry.SerialNumber != input.SerialNumber {
			filtered = append(filtered, entry)
		}
	}
	svc.pending[point.ID] = filtered
	svc.mu.Unlock()

	return nil
}

// PendingEntries returns the entries queued since the last calculated CRL, in
// arrival order.
func (svc *IssuingPointServiceBackend) PendingEntries(issuingPointID string) []models.RevokedCertificate {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]models.RevokedCertificate{}, svc.pending[issuingPointID]...)
}

func (svc *IssuingPointServiceBackend) CalculateCRL(ctx context.Context, input CalculateCRLInput) (*x509.RevocationList, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := crlValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	point, err := svc.service.GetIssuingPointByID(ctx, GetIssuingPointByIDInput{ID: input.IssuingPointID})
	if err != nil {
		return nil, err
	}

	if !point.GenerationEnabled {
		return nil, errs.ErrIssuingPointDisabled
	}

	if point.UpdateProgress != models.CRLUpdateDone && point.UpdateProgress != "" {
		lFunc.Warnf("CRL update for issuing point %s already in progress (%s)", point.ID, point.UpdateProgress)
		return nil, errs.ErrCRLUpdateInProgress
	}

	point.UpdateProgress = models.CRLUpdateStarted
	point, err = svc.ipRepo.Update(ctx, point)
	if err != nil {
		return nil, err
	}

	crl, err := svc.buildCRL(ctx, point)

	if err != nil {
		point.UpdateProgress = models.CRLUpdateDone
		point.UpdateStatus = models.CRLStatusFailed
		point.UpdateError = err.Error()
		if _, uerr := svc.ipRepo.Update(ctx, point); uerr != nil {
			lFunc.Errorf("could not record failed CRL update for issuing point %s: %s", point.ID, uerr)
		}
		return nil, err
	}

	svc.mu.Lock()
	delete(svc.pending, point.ID)
	svc.mu.Unlock()

	// publishing here is persisting the encoded CRL for distribution. The
	// intermediate progress state is visible to concurrent readers until the
	// final update lands.
	point.UpdateProgress = models.CRLUpdatePublishingStarted
	updated, err := svc.ipRepo.Update(ctx, point)
	if err != nil {
		lFunc.Errorf("something went wrong while updating issuing point %s: %s", point.ID, err)
		return nil, err
	}
	point = updated

	point.UpdateProgress = models.CRLUpdateDone
	point.UpdateStatus = models.CRLStatusSucceeded
	point.UpdateError = ""
	point.PublishStatus = models.CRLStatusSucceeded
	point.PublishError = ""
	point.CRLNumber = models.BigInt{Int: crl.Number}
	point.ThisUpdate = crl.ThisUpdate
	point.NextUpdate = crl.NextUpdate
	point.LatestCRL = crl.Raw
	point.Initialized = true

	_, err = svc.ipRepo.Update(ctx, point)
	if err != nil {
		lFunc.Errorf("something went wrong while updating issuing point %s: %s", point.ID, err)
		return nil, err
	}

	return crl, nil
}

func (svc *IssuingPointServiceBackend) GetCRL(ctx context.Context, input GetCRLInput) (*x509.RevocationList, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := crlValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	point, err := svc.service.GetIssuingPointByID(ctx, GetIssuingPointByIDInput{ID: input.IssuingPointID})
	if err != nil {
		return nil, err
	}

	if !point.Initialized || len(point.LatestCRL) == 0 {
		return nil, errs.ErrIssuingPointUninitiated
	}

	crl, err := x509.ParseRevocationList(point.LatestCRL)
	if err != nil {
		lFunc.Errorf("something went wrong while parsing stored CRL: %s", err)
		return nil, err
	}

	return crl, nil
}

func (svc *IssuingPointServiceBackend) buildCRL(ctx context.Context, point *models.IssuingPoint) (*x509.RevocationList, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	certList := []x509.RevocationListEntry{}
	lFunc.Debugf("reading revoked certificates for issuing point %s", point.ID)
	_, err := svc.certsRepo.SelectByStatus(ctx, models.StatusRevoked, storage.StorageListRequest[models.Certificate]{
		ExhaustiveRun: true,
		QueryParams:   &resources.QueryParameters{PageSize: 15},
		ApplyFunc: func(cert models.Certificate) {
			serial, ok := new(big.Int).SetString(cert.SerialNumber, 16)
			if !ok {
				lFunc.Warnf("skipping certificate with malformed serial %s", cert.SerialNumber)
				return
			}

			entry := x509.RevocationListEntry{
				SerialNumber:   serial,
				RevocationTime: cert.RevocationTimestamp,
				ReasonCode:     int(cert.RevocationReason),
			}

			if cert.InvalidityDate != nil {
				ext, eerr := invalidityDateExtension(*cert.InvalidityDate)
				if eerr == nil {
					entry.ExtraExtensions = append(entry.ExtraExtensions, *ext)
				}
			}

			certList = append(certList, entry)
		},
	})
	if err != nil {
		return nil, err
	}

	extensions := []pkix.Extension{}

	idp, err := svc.getDistributionPointExtension(point.ID)
	if err != nil {
		lFunc.Errorf("something went wrong while creating Issuing Distribution Point extension: %s", err)
		return nil, err
	}

	extensions = append(extensions, *idp)

	now := time.Now()

	crlNumber := big.NewInt(1)
	if point.CRLNumber.Int != nil {
		crlNumber = new(big.Int).Add(point.CRLNumber.Int, big.NewInt(1))
	}

	lFunc.Debugf("creating revocation list %s for issuing point %s", crlNumber, point.ID)
	crlDer, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		RevokedCertificateEntries: certList,
		Number:                    crlNumber,
		ThisUpdate:                now,
		NextUpdate:                now.Add(time.Duration(point.Validity)),
		ExtraExtensions:           extensions,
	}, svc.caCert, svc.crlSigner)
	if err != nil {
		return nil, err
	}

	return x509.ParseRevocationList(crlDer)
}

func (svc *IssuingPointServiceBackend) getDistributionPointExtension(issuingPointID string) (*pkix.Extension, error) {
	type DistributionPointName struct { // CHOICE
		FullName     []asn1.RawValue  `asn1:"optional,tag:0"`
		RelativeName pkix.RDNSequence `asn1:"optional,tag:1"`
	}

	// RFC 5280. Section 5.2.5,
	type IssuingDistributionPoint struct {
		DistributionPoint          DistributionPointName `asn1:"tag:0,optional"`
		OnlyContainsUserCerts      bool                  `asn1:"tag:1"`
		OnlyContainsCACerts        bool                  `asn1:"tag:2"`
		OnlySomeReasons            asn1.BitString        `asn1:"tag:3,optional"`
		IndirectCRL                bool                  `asn1:"tag:4"`
		OnlyContainsAttributeCerts bool                  `asn1:"tag:5"`
	}

	idpNames := []asn1.RawValue{}
	for _, name := range svc.distributionDomains {
		idpNames = append(idpNames, asn1.RawValue{Tag: 6, Class: 2, Bytes: []byte(fmt.Sprintf("http://%s/crl/%s", name, issuingPointID))})
	}

	idp, err := asn1.Marshal(IssuingDistributionPoint{
		DistributionPoint: DistributionPointName{
			FullName: idpNames,
		},
	})
	if err != nil {
		return nil, err
	}

	return &pkix.Extension{
		Id:       []int{2, 5, 29, 28},
		Critical: true,
		Value:    idp,
	}, nil
}

func invalidityDateExtension(invalidityDate time.Time) (*pkix.Extension, error) {
	val, err := asn1.MarshalWithParams(invalidityDate.UTC(), "generalized")
	if err != nil {
		return nil, err
	}

	return &pkix.Extension{
		Id:    []int{2, 5, 29, 24},
		Value: val,
	}, nil
}
