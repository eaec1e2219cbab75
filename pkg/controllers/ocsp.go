package controllers

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/services"
	"golang.org/x/crypto/ocsp"
)

type ocspHttpRoutes struct {
	svc    services.OCSPService
	logger *logrus.Entry
}

func NewOCSPHttpRoutes(logger *logrus.Entry, svc services.OCSPService) *ocspHttpRoutes {
	return &ocspHttpRoutes{
		svc:    svc,
		logger: logger,
	}
}

// readOCSPRequest extracts the DER request bytes: base64 in the path for GET,
// raw body for POST.
func (r *ocspHttpRoutes) readOCSPRequest(ctx *gin.Context) ([]byte, error) {
	switch ctx.Request.Method {
	case http.MethodGet:
		type uriParams struct {
			OCSPRequest string `uri:"ocsp_request" binding:"required"`
		}

		var params uriParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			return nil, err
		}

		der, err := base64.URLEncoding.DecodeString(params.OCSPRequest)
		if err != nil {
			return nil, fmt.Errorf("could not decode base64 path segment: %w", err)
		}

		return der, nil
	case http.MethodPost:
		der, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			return nil, fmt.Errorf("could not read body: %w", err)
		}

		return der, nil
	}

	return nil, fmt.Errorf("method not supported: %s", ctx.Request.Method)
}

func (r *ocspHttpRoutes) Verify(ctx *gin.Context) {
	if ctx.Request.Header.Get("Content-Type") != "application/ocsp-request" {
		r.logger.Warnf("request did not include 'application/ocsp-request' as the content-type")
	}

	ocspReqBytes, err := r.readOCSPRequest(ctx)
	if err != nil {
		r.logger.Errorf("could not obtain ocsp request bytes: %s", err)
		ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	ocspReq, err := ocsp.ParseRequest(ocspReqBytes)
	if err != nil {
		r.logger.Errorf("could not parse ocsp request: %s", err)
		ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	response, err := r.svc.Verify(ctx.Request.Context(), ocspReq)
	if err != nil {
		r.logger.Errorf("something went wrong while verifying ocsp request: %s", err)
		ctx.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	ctx.Data(http.StatusOK, "application/ocsp-response", response)
}
