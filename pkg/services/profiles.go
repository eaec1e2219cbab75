package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/engines/storage"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
)

var profileValidate *validator.Validate

// RequestProfile executes the domain policy of one workflow against a
// request. Execute may return *errs.DeferredError to park the request for
// manual approval or *errs.RejectedError to refuse it.
type RequestProfile interface {
	ID() string
	PopulateRequest(ctx context.Context, request *models.Request) error
	Execute(ctx context.Context, request *models.Request) error
}

// Authenticator contributes authentication-derived attributes to a request
// after the raw token claims have been folded in.
type Authenticator interface {
	PopulateRequest(ctx context.Context, token *models.AuthToken, request *models.Request) error
}

type ProfileService interface {
	CreateProfile(ctx context.Context, input CreateProfileInput) (*models.Profile, error)
	GetProfiles(ctx context.Context, input GetProfilesInput) (string, error)
	GetProfileByID(ctx context.Context, input GetProfileByIDInput) (*models.Profile, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*models.Profile, error)
}

type CreateProfileInput struct {
	ID          string             `validate:"required"`
	Name        string             `validate:"required"`
	Description string
	RequestType models.RequestType `validate:"required"`
	Enabled     bool
	Visible     bool
	Inputs      []string
}

type GetProfilesInput struct {
	resources.ListInput[models.Profile]
}

type GetProfileByIDInput struct {
	ID string `validate:"required"`
}

type UpdateProfileInput struct {
	ID          string `validate:"required"`
	Name        string
	Description string
	Enabled     bool
	Visible     bool
	Inputs      []string
}

type ProfileServiceBackend struct {
	logger       *logrus.Entry
	profilesRepo storage.ProfilesRepo
	service      ProfileService
}

type ProfileServiceBuilder struct {
	Logger       *logrus.Entry
	ProfilesRepo storage.ProfilesRepo
}

func NewProfileService(builder ProfileServiceBuilder) ProfileService {
	profileValidate = validator.New()

	svc := &ProfileServiceBackend{
		logger:       builder.Logger,
		profilesRepo: builder.ProfilesRepo,
	}

	svc.service = svc

	return svc
}

func (svc *ProfileServiceBackend) CreateProfile(ctx context.Context, input CreateProfileInput) (*models.Profile, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := profileValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	return svc.profilesRepo.Insert(ctx, &models.Profile{
		ID:           input.ID,
		Name:         input.Name,
		Description:  input.Description,
		RequestType:  input.RequestType,
		Enabled:      input.Enabled,
		Visible:      input.Visible,
		Inputs:       input.Inputs,
		LastModified: time.Now(),
	})
}

func (svc *ProfileServiceBackend) GetProfiles(ctx context.Context, input GetProfilesInput) (string, error) {
	return svc.profilesRepo.SelectAll(ctx, storage.StorageListRequest[models.Profile]{
		ExhaustiveRun: input.ExhaustiveRun,
		QueryParams:   input.QueryParameters,
		ApplyFunc:     input.ApplyFunc,
	})
}

func (svc *ProfileServiceBackend) GetProfileByID(ctx context.Context, input GetProfileByIDInput) (*models.Profile, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := profileValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	exists, profile, err := svc.profilesRepo.SelectExistsByID(ctx, input.ID)
	if err != nil {
		lFunc.Errorf("something went wrong while reading profile %s: %s", input.ID, err)
		return nil, err
	}

	if !exists {
		return nil, errs.ErrProfileNotFound
	}

	return profile, nil
}

// UpdateProfile bumps LastModified: in-flight requests created before the
// update can no longer be approved against this profile.
func (svc *ProfileServiceBackend) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*models.Profile, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := profileValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	profile, err := svc.GetProfileByID(ctx, GetProfileByIDInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		profile.Name = input.Name
	}
	profile.Description = input.Description
	profile.Enabled = input.Enabled
	profile.Visible = input.Visible
	if input.Inputs != nil {
		profile.Inputs = input.Inputs
	}
	profile.LastModified = time.Now()

	return svc.profilesRepo.Update(ctx, profile)
}

// BasicProfile is the default workflow implementation: it copies the profile
// identity onto the request and accepts or defers based on the enabled flag.
type BasicProfile struct {
	Record *models.Profile
	// Defer parks every executed request for manual agent approval.
	Defer bool
}

func (p *BasicProfile) ID() string {
	return p.Record.ID
}

func (p *BasicProfile) PopulateRequest(ctx context.Context, request *models.Request) error {
	request.ExtData.Set(models.ExtProfileID, models.ExtString(p.Record.ID))
	return nil
}

func (p *BasicProfile) Execute(ctx context.Context, request *models.Request) error {
	if !p.Record.Enabled {
		return &errs.RejectedError{Reason: fmt.Sprintf("profile %s is disabled", p.Record.ID)}
	}

	if p.Defer {
		return &errs.DeferredError{Reason: "profile requires agent approval"}
	}

	return nil
}
