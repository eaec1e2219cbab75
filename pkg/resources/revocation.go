package resources

import (
	"time"

	"github.com/veridiapki/veridia/pkg/models"
)

type RevokeCertificateBody struct {
	Reason         models.RevocationReason `json:"reason"`
	InvalidityDate *time.Time              `json:"invalidity_date,omitempty"`
	Comments       string                  `json:"comments,omitempty"`
	SubjectDN      string                  `json:"subject_dn,omitempty"`
	RevokingCACert bool                    `json:"revoking_ca_cert,omitempty"`
	Nonce          *int64                  `json:"nonce,omitempty"`
}

type RevokeByFilterBody struct {
	Reason         models.RevocationReason `json:"reason"`
	InvalidityDate *time.Time              `json:"invalidity_date,omitempty"`
	Comments       string                  `json:"comments,omitempty"`
}

type UnrevokeCertificateBody struct {
	Comments string `json:"comments,omitempty"`
	Nonce    *int64 `json:"nonce,omitempty"`
}

type AgentActionBody struct {
	Nonce  *int64 `json:"nonce,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type AssignRequestBody struct {
	Assignee string `json:"assignee,omitempty"`
}

type UpdateRequestDefaultsBody struct {
	Defaults map[string]string `json:"defaults"`
}

type CreateIssuingPointBody struct {
	ID                 string              `json:"id"`
	Description        string              `json:"description,omitempty"`
	Validity           models.TimeDuration `json:"validity"`
	RefreshInterval    models.TimeDuration `json:"refresh_interval,omitempty"`
	RegenerateOnRevoke bool                `json:"regenerate_on_revoke"`
	GenerationEnabled  bool                `json:"generation_enabled"`
}

type UpdateIssuingPointBody struct {
	Description        string              `json:"description,omitempty"`
	Validity           models.TimeDuration `json:"validity"`
	RefreshInterval    models.TimeDuration `json:"refresh_interval,omitempty"`
	RegenerateOnRevoke bool                `json:"regenerate_on_revoke"`
	GenerationEnabled  bool                `json:"generation_enabled"`
}

type GetItemsResponse[E any] struct {
	NextBookmark string `json:"next"`
	List         []E    `json:"list"`
}
