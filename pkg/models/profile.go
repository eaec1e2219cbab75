package models

import "time"

// Profile describes one enrollment/revocation workflow offered by the CA.
// A request carries the ID of the profile it was created under; approval is
// refused when the profile changed after the request was submitted.
type Profile struct {
	ID           string      `json:"id" gorm:"primaryKey"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	RequestType  RequestType `json:"request_type"`
	Enabled      bool        `json:"enabled"`
	Visible      bool        `json:"visible"`
	Inputs       []string    `json:"inputs" gorm:"serializer:json"`
	LastModified time.Time   `json:"last_modified"`
}
