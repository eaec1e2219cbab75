package errs

import "errors"

var (
	ErrValidateBadRequest error = errors.New("struct validation error")

	ErrCertificateNotFound                   error = errors.New("certificate not found")
	ErrCertificateAlreadyRevoked             error = errors.New("certificate already revoked")
	ErrCertificateStatusTransitionNotAllowed error = errors.New("new status transition not allowed for certificate")

	ErrUnauthorized           error = errors.New("unauthorized")
	ErrSubjectMismatch        error = errors.New("subject does not match target certificate")
	ErrOnHoldNotAllowed       error = errors.New("placing certificates on hold is disabled")
	ErrCACertificateProtected error = errors.New("revoking the CA signing certificate requires an explicit CA revocation")
	ErrNotCACertificate       error = errors.New("certificate is not the CA signing certificate")

	ErrEncodeExtension error = errors.New("could not encode CRL entry extension")

	ErrIssuingPointNotFound    error = errors.New("CRL issuing point not found")
	ErrIssuingPointDisabled    error = errors.New("CRL generation disabled for issuing point")
	ErrCRLUpdateInProgress     error = errors.New("CRL update already in progress")
	ErrIssuingPointUninitiated error = errors.New("CRL issuing point not initialized")
)
