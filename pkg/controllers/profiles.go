package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
	"github.com/veridiapki/veridia/pkg/services"
)

type profilesHttpRoutes struct {
	svc    services.ProfileService
	logger *logrus.Entry
}

func NewProfilesHttpRoutes(logger *logrus.Entry, svc services.ProfileService) *profilesHttpRoutes {
	return &profilesHttpRoutes{
		svc:    svc,
		logger: logger,
	}
}

func (r *profilesHttpRoutes) handleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrProfileNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrValidateBadRequest):
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
	}
}

func bindProfileID(ctx *gin.Context) (string, bool) {
	type uriParams struct {
		ID string `uri:"id" binding:"required"`
	}

	var params uriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return "", false
	}

	return params.ID, true
}

func (r *profilesHttpRoutes) CreateProfile(ctx *gin.Context) {
	var requestBody resources.CreateProfileBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	profile, err := r.svc.CreateProfile(ctx.Request.Context(), services.CreateProfileInput{
		ID:          requestBody.ID,
		Name:        requestBody.Name,
		Description: requestBody.Description,
		RequestType: requestBody.RequestType,
		Enabled:     requestBody.Enabled,
		Visible:     requestBody.Visible,
		Inputs:      requestBody.Inputs,
	})
	if err != nil {
		r.logger.Errorf("something went wrong while creating profile: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, profile)
}

func (r *profilesHttpRoutes) GetProfiles(ctx *gin.Context) {
	queryParams := FilterQuery(ctx.Request, resources.ProfileFilterableFields)

	profiles := []models.Profile{}
	nextBookmark, err := r.svc.GetProfiles(ctx.Request.Context(), services.GetProfilesInput{
		ListInput: resources.ListInput[models.Profile]{
			QueryParameters: queryParams,
			ExhaustiveRun:   false,
			ApplyFunc: func(profile models.Profile) {
				profiles = append(profiles, profile)
			},
		},
	})
	if err != nil {
		r.logger.Errorf("something went wrong while listing profiles: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resources.GetItemsResponse[models.Profile]{
		NextBookmark: nextBookmark,
		List:         profiles,
	})
}

func (r *profilesHttpRoutes) GetProfileByID(ctx *gin.Context) {
	profileID, ok := bindProfileID(ctx)
	if !ok {
		return
	}

	profile, err := r.svc.GetProfileByID(ctx.Request.Context(), services.GetProfileByIDInput{ID: profileID})
	if err != nil {
		r.logger.Errorf("something went wrong while getting profile: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

func (r *profilesHttpRoutes) UpdateProfile(ctx *gin.Context) {
	profileID, ok := bindProfileID(ctx)
	if !ok {
		return
	}

	var requestBody resources.UpdateProfileBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	profile, err := r.svc.UpdateProfile(ctx.Request.Context(), services.UpdateProfileInput{
		ID:          profileID,
		Name:        requestBody.Name,
		Description: requestBody.Description,
		Enabled:     requestBody.Enabled,
		Visible:     requestBody.Visible,
		Inputs:      requestBody.Inputs,
	})
	if err != nil {
		r.logger.Errorf("something went wrong while updating profile: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, profile)
}
