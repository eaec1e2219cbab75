package services

import (
	"context"
	"crypto"
	"crypto/x509"
	"path/filepath"
	"testing"
	"time"

	"github.com/veridiapki/veridia/pkg/config"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/storage/postgres"
)

type caTestStack struct {
	certsRepo    storage.CertificatesRepo
	requestsRepo storage.RequestsRepo
	ipRepo       storage.IssuingPointsRepo
	profilesRepo storage.ProfilesRepo

	caCert *x509.Certificate
	caKey  crypto.Signer

	queue         RequestQueueService
	issuingPoints IssuingPointService
	revocation    RevocationService
}

func buildCATestStack(t *testing.T) *caTestStack {
	log := helpers.SetupLogger(config.Info, "Test Case", "Service")

	db, err := postgres.CreateSQLiteDBConnection(log, config.SQLitePSEConfig{
		DatabasePath: filepath.Join(t.TempDir(), "ca.db"),
	}, "ca")
	if err != nil {
		t.Fatalf("could not create sqlite connection: %s", err)
	}

	certsRepo, err := postgres.NewCertificateRepository(log, db)
	if err != nil {
		t.Fatalf("could not initialize certificate storage: %s", err)
	}

	requestsRepo, err := postgres.NewRequestRepository(log, db)
	if err != nil {
		t.Fatalf("could not initialize request storage: %s", err)
	}

	ipRepo, err := postgres.NewIssuingPointRepository(log, db)
	if err != nil {
		t.Fatalf("could not initialize issuing point storage: %s", err)
	}

	profilesRepo, err := postgres.NewProfileRepository(log, db)
	if err != nil {
		t.Fatalf("could not initialize profile storage: %s", err)
	}

	caCert, caKey, err := helpers.GenerateSelfSignedCA(x509.ECDSA, 24*time.Hour, "TestCA")
	if err != nil {
		t.Fatalf("could not generate CA: %s", err)
	}

	issuingPoints := NewIssuingPointService(IssuingPointServiceBuilder{
		Logger:            log,
		IssuingPointsRepo: ipRepo,
		CertificatesRepo:  certsRepo,
		CACertificate:     caCert,
		CRLSigner:         caKey,
	})

	statusChange := NewCertStatusChangeService(CertStatusChangeBuilder{
		Logger:              log,
		CertificatesRepo:    certsRepo,
		IssuingPointService: issuingPoints,
	})

	queue := NewRequestQueueService(RequestQueueBuilder{
		Logger:       log,
		RequestsRepo: requestsRepo,
		Services: map[models.RequestType]RequestService{
			models.RequestTypeRevocation:   statusChange,
			models.RequestTypeUnrevocation: statusChange,
		},
	})

	revocation := NewRevocationService(RevocationServiceBuilder{
		Logger:           log,
		CertificatesRepo: certsRepo,
		Queue:            queue,
		CACertificate:    caCert,
		AllowOnHold:      true,
	})

	return &caTestStack{
		certsRepo:     certsRepo,
		requestsRepo:  requestsRepo,
		ipRepo:        ipRepo,
		profilesRepo:  profilesRepo,
		caCert:        caCert,
		caKey:         caKey,
		queue:         queue,
		issuingPoints: issuingPoints,
		revocation:    revocation,
	}
}

func (s *caTestStack) issueCertificate(t *testing.T, commonName string) *models.Certificate {
	cert, _, err := helpers.GenerateCertificate(s.caCert, s.caKey, time.Hour, commonName)
	if err != nil {
		t.Fatalf("could not issue certificate: %s", err)
	}

	record, err := s.certsRepo.Insert(context.Background(), &models.Certificate{
		SerialNumber: helpers.SerialNumberToHexString(cert.SerialNumber),
		Status:       models.StatusValid,
		Certificate:  (*models.X509Certificate)(cert),
		Subject:      helpers.PkixNameToSubject(cert.Subject),
		SubjectDN:    cert.Subject.String(),
		IssuerDN:     cert.Issuer.String(),
		ValidFrom:    cert.NotBefore,
		ValidTo:      cert.NotAfter,
	})
	if err != nil {
		t.Fatalf("could not insert certificate: %s", err)
	}

	return record
}

func (s *caTestStack) insertCARecord(t *testing.T) *models.Certificate {
	record, err := s.certsRepo.Insert(context.Background(), &models.Certificate{
		SerialNumber: helpers.SerialNumberToHexString(s.caCert.SerialNumber),
		Status:       models.StatusValid,
		Certificate:  (*models.X509Certificate)(s.caCert),
		Subject:      helpers.PkixNameToSubject(s.caCert.Subject),
		SubjectDN:    s.caCert.Subject.String(),
		IssuerDN:     s.caCert.Issuer.String(),
		ValidFrom:    s.caCert.NotBefore,
		ValidTo:      s.caCert.NotAfter,
		IsCA:         true,
	})
	if err != nil {
		t.Fatalf("could not insert CA record: %s", err)
	}

	return record
}
