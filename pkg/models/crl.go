package models

import (
	"fmt"
	"time"
)

// CRLUpdateProgress is the tri-state busy signal exposed by an issuing point
// while a CRL update runs.
type CRLUpdateProgress string

const (
	CRLUpdateStarted           CRLUpdateProgress = "STARTED"
	CRLUpdatePublishingStarted CRLUpdateProgress = "PUBLISHING_STARTED"
	CRLUpdateDone              CRLUpdateProgress = "DONE"
)

const (
	CRLStatusSucceeded = "succeeded"
	CRLStatusFailed    = "failed"
)

// IssuingPoint is one named CRL generation target (e.g. the master CRL). It
// tracks its own CRL number sequence and the outcome of the last update and
// publish attempts, which status-change requests report back to callers.
type IssuingPoint struct {
	ID                 string            `json:"id" gorm:"primaryKey"`
	Description        string            `json:"description"`
	CRLNumber          BigInt            `json:"crl_number" gorm:"type:NUMERIC;serializer:text"`
	ThisUpdate         time.Time         `json:"this_update"`
	NextUpdate         time.Time         `json:"next_update"`
	Validity           TimeDuration      `json:"validity" gorm:"serializer:text"`
	RefreshInterval    TimeDuration      `json:"refresh_interval" gorm:"serializer:text"`
	RegenerateOnRevoke bool              `json:"regenerate_on_revoke"`
	GenerationEnabled  bool              `json:"generation_enabled"`
	Initialized        bool              `json:"initialized"`
	LatestCRL          []byte            `json:"-" gorm:"type:bytes"`
	UpdateProgress     CRLUpdateProgress `json:"update_progress"`
	UpdateStatus       string            `json:"update_status"`
	UpdateError        string            `json:"update_error"`
	PublishStatus      string            `json:"publish_status"`
	PublishError       string            `json:"publish_error"`
}

// Extended-attribute keys under which a status-change request records this
// issuing point's update/publish outcome.
func (ip *IssuingPoint) CRLUpdateStatusKey() string {
	return fmt.Sprintf("%s.%s", ExtCRLUpdateStatus, ip.ID)
}

func (ip *IssuingPoint) CRLUpdateErrorKey() string {
	return fmt.Sprintf("%s.%s", ExtCRLUpdateError, ip.ID)
}

func (ip *IssuingPoint) CRLPublishStatusKey() string {
	return fmt.Sprintf("%s.%s", ExtCRLPublishStatus, ip.ID)
}

func (ip *IssuingPoint) CRLPublishErrorKey() string {
	return fmt.Sprintf("%s.%s", ExtCRLPublishError, ip.ID)
}
