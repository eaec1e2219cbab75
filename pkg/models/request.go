package models

import (
	"time"
)

type RequestType string

const (
	RequestTypeEnrollment         RequestType = "enrollment"
	RequestTypeRenewal            RequestType = "renewal"
	RequestTypeRevocation         RequestType = "revocation"
	RequestTypeUnrevocation       RequestType = "unrevocation"
	RequestTypeReplicaPropagation RequestType = "replica-propagation"
	RequestTypeGetCRL             RequestType = "get-crl"
)

type RequestStatus string

const (
	RequestStatusBegin      RequestStatus = "BEGIN"
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusApproved   RequestStatus = "APPROVED"
	RequestStatusSvcPending RequestStatus = "SVC_PENDING"
	RequestStatusCanceled   RequestStatus = "CANCELED"
	RequestStatusRejected   RequestStatus = "REJECTED"
	RequestStatusComplete   RequestStatus = "COMPLETE"
)

// IsTerminal reports whether the status closes the request for good. A
// terminal request is never resubmitted and its status is never mutated again.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusComplete, RequestStatusRejected, RequestStatusCanceled:
		return true
	}
	return false
}

type RequestorType string

const (
	RequestorTypeEE    RequestorType = "EE"
	RequestorTypeAgent RequestorType = "AGENT"
)

type ResultCode string

const (
	ResultSuccess ResultCode = "RES_SUCCESS"
	ResultError   ResultCode = "RES_ERROR"
)

// Error codes recorded under ExtErrorCode when a submitted request does not
// complete.
const (
	ErrorCodeInternal int64 = 1
	ErrorCodeDeferred int64 = 2
	ErrorCodeRejected int64 = 3
)

// Request is the unit of work accepted by the request queue: one certificate
// lifecycle operation plus an open-ended extended-attribute bag the queue
// pipeline passes through untouched.
type Request struct {
	ID             string        `json:"id" gorm:"primaryKey"`
	Type           RequestType   `json:"type"`
	Status         RequestStatus `json:"status"`
	Owner          string        `json:"owner"`
	RequestorType  RequestorType `json:"requestor_type"`
	CreationTS     time.Time     `json:"creation_ts"`
	ModificationTS time.Time     `json:"modification_ts"`
	Result         ResultCode    `json:"result"`
	Error          string        `json:"error,omitempty"`
	ServiceErrors  []string      `json:"service_errors,omitempty" gorm:"serializer:json"`
	ExtData        *ExtDataMap   `json:"ext_data" gorm:"serializer:json"`
}
