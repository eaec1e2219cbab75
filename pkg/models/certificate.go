package models

import (
	"time"
)

type CertificateStatus string

const (
	StatusValid   CertificateStatus = "VALID"
	StatusRevoked CertificateStatus = "REVOKED"
	StatusExpired CertificateStatus = "EXPIRED"
	StatusInvalid CertificateStatus = "INVALID"
)

type Subject struct {
	CommonName       string `json:"common_name"`
	Organization     string `json:"organization"`
	OrganizationUnit string `json:"organization_unit"`
	Country          string `json:"country"`
	State            string `json:"state"`
	Locality         string `json:"locality"`
}

// Certificate is the durable record for one issued certificate. The serial
// number is assigned at issuance and never changes; status is only mutated
// through an accepted revocation or unrevocation Request.
type Certificate struct {
	SerialNumber        string                 `json:"serial_number" gorm:"primaryKey"`
	Metadata            map[string]interface{} `json:"metadata" gorm:"serializer:json"`
	Status              CertificateStatus      `json:"status"`
	Certificate         *X509Certificate       `json:"certificate"`
	Subject             Subject                `json:"subject" gorm:"embedded;embeddedPrefix:subject_"`
	SubjectDN           string                 `json:"subject_dn"`
	IssuerDN            string                 `json:"issuer_dn"`
	ValidFrom           time.Time              `json:"valid_from"`
	ValidTo             time.Time              `json:"valid_to"`
	RevokedBy           string                 `json:"revoked_by"`
	RevocationTimestamp time.Time              `json:"revocation_timestamp"`
	RevocationReason    RevocationReason       `json:"revocation_reason" gorm:"serializer:text"`
	InvalidityDate      *time.Time             `json:"invalidity_date,omitempty"`
	IsCA                bool                   `json:"is_ca"`
}
