package services

import (
	"context"
	"crypto"
	"crypto/x509"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"golang.org/x/crypto/ocsp"
)

type OCSPService interface {
	Verify(ctx context.Context, req *ocsp.Request) ([]byte, error)
}

type ocspResponder struct {
	revocation RevocationService
	caCert     *x509.Certificate
	signer     crypto.Signer
	logger     *logrus.Entry
}

type OCSPServiceBuilder struct {
	Logger        *logrus.Entry
	Revocation    RevocationService
	CACertificate *x509.Certificate
	Signer        crypto.Signer
}

func NewOCSPService(builder OCSPServiceBuilder) OCSPService {
	return &ocspResponder{
		revocation: builder.Revocation,
		caCert:     builder.CACertificate,
		signer:     builder.Signer,
		logger:     builder.Logger,
	}
}

func (svc ocspResponder) Verify(ctx context.Context, req *ocsp.Request) ([]byte, error) {
	ocspCrtSN := helpers.SerialNumberToHexString(req.SerialNumber)
	crt, err := svc.revocation.GetCertificateBySerialNumber(ctx, GetCertificateBySerialNumberInput{
		SerialNumber: ocspCrtSN,
	})
	if err != nil {
		return nil, err
	}

	status := ocsp.Unknown
	var revokedAt time.Time
	if crt.Status == models.StatusRevoked {
		status = ocsp.Revoked
		revokedAt = crt.RevocationTimestamp
	} else if crt.Status == models.StatusValid {
		status = ocsp.Good
	}

	rtemplate := ocsp.Response{
		Status:           status,
		SerialNumber:     req.SerialNumber,
		Certificate:      svc.caCert,
		RevocationReason: int(crt.RevocationReason),
		IssuerHash:       req.HashAlgorithm,
		RevokedAt:        revokedAt,
		ThisUpdate:       time.Now().AddDate(0, 0, -1).UTC(),
		// the ocsp library defaults NextUpdate to epoch which makes clients freak out
		NextUpdate: time.Now().AddDate(0, 0, 1).UTC(),
	}

	rawResp, err := ocsp.CreateResponse(svc.caCert, svc.caCert, rtemplate, svc.signer)
	if err != nil {
		return nil, err
	}

	return rawResp, nil
}
