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

type crlHttpRoutes struct {
	svc    services.IssuingPointService
	logger *logrus.Entry
}

func NewCRLHttpRoutes(logger *logrus.Entry, svc services.IssuingPointService) *crlHttpRoutes {
	return &crlHttpRoutes{
		svc:    svc,
		logger: logger,
	}
}

func (r *crlHttpRoutes) handleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrIssuingPointNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrValidateBadRequest):
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrIssuingPointDisabled), errors.Is(err, errs.ErrIssuingPointUninitiated):
		ctx.JSON(http.StatusConflict, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrCRLUpdateInProgress):
		ctx.JSON(http.StatusConflict, gin.H{"err": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
	}
}

func bindIssuingPointID(ctx *gin.Context) (string, bool) {
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

func (r *crlHttpRoutes) CRL(ctx *gin.Context) {
	issuingPointID, ok := bindIssuingPointID(ctx)
	if !ok {
		return
	}

	crl, err := r.svc.GetCRL(ctx.Request.Context(), services.GetCRLInput{
		IssuingPointID: issuingPointID,
	})
	if err != nil {
		r.logger.Errorf("something went wrong while getting crl list: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.Data(http.StatusOK, "application/pkix-crl", crl.Raw)
}

func (r *crlHttpRoutes) CalculateCRL(ctx *gin.Context) {
	issuingPointID, ok := bindIssuingPointID(ctx)
	if !ok {
		return
	}

	crl, err := r.svc.CalculateCRL(ctx.Request.Context(), services.CalculateCRLInput{
		IssuingPointID: issuingPointID,
	})
	if err != nil {
		r.logger.Errorf("something went wrong while calculating crl: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.Data(http.StatusOK, "application/pkix-crl", crl.Raw)
}

func (r *crlHttpRoutes) CreateIssuingPoint(ctx *gin.Context) {
	var requestBody resources.CreateIssuingPointBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	point, err := r.svc.CreateIssuingPoint(ctx.Request.Context(), services.CreateIssuingPointInput{
		ID:                 requestBody.ID,
		Description:        requestBody.Description,
		Validity:           requestBody.Validity,
		RefreshInterval:    requestBody.RefreshInterval,
		RegenerateOnRevoke: requestBody.RegenerateOnRevoke,
		GenerationEnabled:  requestBody.GenerationEnabled,
	})
	if err != nil {
		r.logger.Errorf("something went wrong while creating issuing point: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, point)
}

func (r *crlHttpRoutes) GetIssuingPoints(ctx *gin.Context) {
	queryParams := FilterQuery(ctx.Request, resources.IssuingPointFilterableFields)

	points := []models.IssuingPoint{}
	nextBookmark, err := r.svc.GetIssuingPoints(ctx.Request.Context(), services.GetIssuingPointsInput{
		ListInput: resources.ListInput[models.IssuingPoint]{
			QueryParameters: queryParams,
			ExhaustiveRun:   false,
			ApplyFunc: func(point models.IssuingPoint) {
				points = append(points, point)
			},
		},
	})
	if err != nil {
		r.logger.Errorf("something went wrong while listing issuing points: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resources.GetItemsResponse[models.IssuingPoint]{
		NextBookmark: nextBookmark,
		List:         points,
	})
}

func (r *crlHttpRoutes) GetIssuingPointByID(ctx *gin.Context) {
	issuingPointID, ok := bindIssuingPointID(ctx)
	if !ok {
		return
	}

	point, err := r.svc.GetIssuingPointByID(ctx.Request.Context(), services.GetIssuingPointByIDInput{
		ID: issuingPointID,
	})
	if err != nil {
		r.logger.Errorf("something went wrong while getting issuing point: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, point)
}

func (r *crlHttpRoutes) UpdateIssuingPoint(ctx *gin.Context) {
	issuingPointID, ok := bindIssuingPointID(ctx)
	if !ok {
		return
	}

	var requestBody resources.UpdateIssuingPointBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	point, err := r.svc.UpdateIssuingPoint(ctx.Request.Context(), services.UpdateIssuingPointInput{
		ID:                 issuingPointID,
		Description:        requestBody.Description,
		Validity:           requestBody.Validity,
		RefreshInterval:    requestBody.RefreshInterval,
		RegenerateOnRevoke: requestBody.RegenerateOnRevoke,
		GenerationEnabled:  requestBody.GenerationEnabled,
	})
	if err != nil {
		r.logger.Errorf("something went wrong while updating issuing point: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, point)
}
