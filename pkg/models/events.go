package models

const HttpSourceHeader = "x-vrd-source"
const HttpRequestIDHeader = "x-request-id"

const CASource = "vrn://service/veridia-ca"
const VASource = "vrn://service/veridia-va"

type EventType string

const (
	EventCertStatusChangeRequestKey   EventType = "certificate.status-change.request"
	EventCertStatusChangeProcessedKey EventType = "certificate.status-change.processed"

	EventRequestApproveKey  EventType = "request.approve"
	EventRequestRejectKey   EventType = "request.reject"
	EventRequestCancelKey   EventType = "request.cancel"
	EventRequestAssignKey   EventType = "request.assign"
	EventRequestUnassignKey EventType = "request.unassign"
	EventRequestUpdateKey   EventType = "request.update"
	EventRequestValidateKey EventType = "request.validate"

	EventCreateCRLKey          EventType = "crl.create"
	EventUpdateIssuingPointKey EventType = "crl.issuing-point.update"

	EventAnyKey EventType = "any"
)

type APIServiceInfo struct {
	Version   string
	BuildSHA  string
	BuildTime string
}
