package models

type AuditOutcome string

const (
	AuditOutcomeSuccess AuditOutcome = "SUCCESS"
	AuditOutcomeFailure AuditOutcome = "FAILURE"
)

// Audit request-type tags for certificate status changes.
const (
	AuditRequestTypeRevoke  = "revoke"
	AuditRequestTypeOnHold  = "on-hold"
	AuditRequestTypeOffHold = "off-hold"
)

// AuditSerialEmpty is the sentinel logged when no serial number applies.
const AuditSerialEmpty = "<empty>"

// CertStatusChangeRequestEvent is emitted when a status-change request is
// submitted, before the queue decides its fate.
type CertStatusChangeRequestEvent struct {
	SubjectID    string       `json:"subject_id"`
	Outcome      AuditOutcome `json:"outcome"`
	RequesterID  string       `json:"requester_id"`
	SerialNumber string       `json:"serial_number"`
	RequestType  string       `json:"request_type"`
}

// RequestProcessedEvent is the per-request audit record emitted while a
// submission batch runs, success and failure variants mirroring each other.
type RequestProcessedEvent struct {
	RequestID     string        `json:"request_id"`
	Outcome       AuditOutcome  `json:"outcome"`
	RequesterID   string        `json:"requester_id"`
	ErrorCode     int64         `json:"error_code,omitempty"`
	RequestStatus RequestStatus `json:"request_status"`
}

// CertStatusChangeRequestProcessedEvent is emitted only once the request has
// reached a terminal status (COMPLETE, REJECTED or CANCELED) - never for
// PENDING.
type CertStatusChangeRequestProcessedEvent struct {
	SubjectID     string        `json:"subject_id"`
	Outcome       AuditOutcome  `json:"outcome"`
	RequesterID   string        `json:"requester_id"`
	SerialNumber  string        `json:"serial_number"`
	RequestType   string        `json:"request_type"`
	ReasonCode    int           `json:"reason_code"`
	RequestStatus RequestStatus `json:"request_status"`
}
