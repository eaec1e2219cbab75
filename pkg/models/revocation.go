package models

import (
	"crypto/x509/pkix"
	"time"
)

// RevokedCertificate is the per-entry payload queued for the CRL issuing
// point: the serial, the moment revocation was requested, and the entry
// extension set shared by every certificate of the same revocation batch.
type RevokedCertificate struct {
	SerialNumber    string           `json:"serial_number"`
	RevocationTime  time.Time        `json:"revocation_time"`
	EntryExtensions []pkix.Extension `json:"entry_extensions"`
}

// RequestorInitiative records who or what triggered a status-change action,
// for audit formatting.
const (
	InitiativeEndEntity = "EE"
	InitiativeAgent     = "agents"
)
