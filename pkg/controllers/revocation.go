package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia"
	"github.com/veridiapki/veridia/pkg/errs"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/resources"
	"github.com/veridiapki/veridia/pkg/services"
)

type revocationHttpRoutes struct {
	svc    services.RevocationService
	logger *logrus.Entry
}

func NewRevocationHttpRoutes(logger *logrus.Entry, svc services.RevocationService) *revocationHttpRoutes {
	return &revocationHttpRoutes{
		svc:    svc,
		logger: logger,
	}
}

func (r *revocationHttpRoutes) handleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrCertificateNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrValidateBadRequest):
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		ctx.JSON(http.StatusForbidden, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrCertificateAlreadyRevoked),
		errors.Is(err, errs.ErrCertificateStatusTransitionNotAllowed):
		ctx.JSON(http.StatusConflict, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrNonceNotFound), errors.Is(err, errs.ErrNonceMismatch):
		ctx.JSON(http.StatusConflict, gin.H{"err": err.Error()})
	default:
		var svcErr *errs.ServiceError
		if errors.As(err, &svcErr) {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"err": svcErr.Error(), "request_id": svcErr.RequestID, "service_errors": svcErr.Errors})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
	}
}

func callerID(ctx *gin.Context) string {
	if id, ok := ctx.Request.Context().Value(veridia.ContextKeyAuthID).(string); ok {
		return id
	}
	return ""
}

func sessionID(ctx *gin.Context) string {
	if id, ok := ctx.Request.Context().Value(veridia.ContextKeySessionID).(string); ok {
		return id
	}
	return ""
}

func (r *revocationHttpRoutes) RevokeCertificate(ctx *gin.Context) {
	type uriParams struct {
		SerialNumber string `uri:"sn" binding:"required"`
	}

	var params uriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var requestBody resources.RevokeCertificateBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	request, err := r.svc.RevokeCertificate(ctx.Request.Context(), services.RevokeCertificateInput{
		SerialNumber:   params.SerialNumber,
		Reason:         requestBody.Reason,
		InvalidityDate: requestBody.InvalidityDate,
		Comments:       requestBody.Comments,
		SubjectDN:      requestBody.SubjectDN,
		RevokingCACert: requestBody.RevokingCACert,
		RequesterID:    callerID(ctx),
		Nonce:          requestBody.Nonce,
		SessionID:      sessionID(ctx),
	})
	if err != nil {
		r.logger.Errorf("something went wrong while revoking certificate: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}

func (r *revocationHttpRoutes) RevokeCertificatesByFilter(ctx *gin.Context) {
	var requestBody resources.RevokeByFilterBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	queryParams := FilterQuery(ctx.Request, resources.CertificateFilterableFields)

	request, err := r.svc.RevokeCertificatesByFilter(ctx.Request.Context(), services.RevokeCertificatesByFilterInput{
		QueryParameters: queryParams,
		Reason:          requestBody.Reason,
		InvalidityDate:  requestBody.InvalidityDate,
		Comments:        requestBody.Comments,
		RequesterID:     callerID(ctx),
	})
	if err != nil {
		r.logger.Errorf("something went wrong while revoking certificates by filter: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}

func (r *revocationHttpRoutes) UnrevokeCertificate(ctx *gin.Context) {
	type uriParams struct {
		SerialNumber string `uri:"sn" binding:"required"`
	}

	var params uriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var requestBody resources.UnrevokeCertificateBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	request, err := r.svc.UnrevokeCertificate(ctx.Request.Context(), services.UnrevokeCertificateInput{
		SerialNumber: params.SerialNumber,
		Comments:     requestBody.Comments,
		RequesterID:  callerID(ctx),
		Nonce:        requestBody.Nonce,
		SessionID:    sessionID(ctx),
	})
	if err != nil {
		r.logger.Errorf("something went wrong while unrevoking certificate: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request)
}

func (r *revocationHttpRoutes) GetCertificateBySerialNumber(ctx *gin.Context) {
	type uriParams struct {
		SerialNumber string `uri:"sn" binding:"required"`
	}

	var params uriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	cert, err := r.svc.GetCertificateBySerialNumber(ctx.Request.Context(), services.GetCertificateBySerialNumberInput{
		SerialNumber: params.SerialNumber,
	})
	if err != nil {
		r.logger.Errorf("something went wrong while getting certificate: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, cert)
}

func (r *revocationHttpRoutes) GetCertificates(ctx *gin.Context) {
	queryParams := FilterQuery(ctx.Request, resources.CertificateFilterableFields)

	certs := []models.Certificate{}
	nextBookmark, err := r.svc.GetCertificates(ctx.Request.Context(), services.GetCertificatesInput{
		ListInput: resources.ListInput[models.Certificate]{
			QueryParameters: queryParams,
			ExhaustiveRun:   false,
			ApplyFunc: func(cert models.Certificate) {
				certs = append(certs, cert)
			},
		},
	})
	if err != nil {
		r.logger.Errorf("something went wrong while listing certificates: %s", err)
		r.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resources.GetItemsResponse[models.Certificate]{
		NextBookmark: nextBookmark,
		List:         certs,
	})
}
