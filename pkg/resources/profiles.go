package resources

import "github.com/veridiapki/veridia/pkg/models"

type CreateProfileBody struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	RequestType models.RequestType `json:"request_type"`
	Enabled     bool               `json:"enabled"`
	Visible     bool               `json:"visible"`
	Inputs      []string           `json:"inputs"`
}

type UpdateProfileBody struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Enabled     bool     `json:"enabled"`
	Visible     bool     `json:"visible"`
	Inputs      []string `json:"inputs"`
}
