package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/controllers"
	"github.com/veridiapki/veridia/pkg/services"
)

func NewCARoutes(logger *logrus.Entry, httpGrp *gin.RouterGroup, revocation services.RevocationService, queue services.RequestQueueService, approval services.ApprovalService, issuingPoints services.IssuingPointService, profiles services.ProfileService, ocsp services.OCSPService, nonces *services.NonceManager) {
	revocationRoutes := controllers.NewRevocationHttpRoutes(logger, revocation)
	requestRoutes := controllers.NewRequestsHttpRoutes(logger, queue, approval, nonces)
	crlRoutes := controllers.NewCRLHttpRoutes(logger, issuingPoints)
	profileRoutes := controllers.NewProfilesHttpRoutes(logger, profiles)
	ocspRoutes := controllers.NewOCSPHttpRoutes(logger, ocsp)

	httpGrp.GET("/certificates", revocationRoutes.GetCertificates)
	httpGrp.GET("/certificates/:sn", revocationRoutes.GetCertificateBySerialNumber)
	httpGrp.POST("/certificates/:sn/revoke", revocationRoutes.RevokeCertificate)
	httpGrp.POST("/certificates/:sn/unrevoke", revocationRoutes.UnrevokeCertificate)
	httpGrp.POST("/certificates/revoke", revocationRoutes.RevokeCertificatesByFilter)

	httpGrp.GET("/requests", requestRoutes.GetRequests)
	httpGrp.GET("/requests/:id", requestRoutes.GetRequestByID)
	httpGrp.GET("/requests/:id/nonce/:op", requestRoutes.IssueNonce)
	httpGrp.POST("/requests/:id/approve", requestRoutes.ApproveRequest)
	httpGrp.POST("/requests/:id/reject", requestRoutes.RejectRequest)
	httpGrp.POST("/requests/:id/cancel", requestRoutes.CancelRequest)
	httpGrp.POST("/requests/:id/assign", requestRoutes.AssignRequest)
	httpGrp.POST("/requests/:id/unassign", requestRoutes.UnassignRequest)
	httpGrp.PUT("/requests/:id/defaults", requestRoutes.UpdateRequestDefaults)
	httpGrp.POST("/requests/:id/validate", requestRoutes.ValidateRequest)

	httpGrp.POST("/profiles", profileRoutes.CreateProfile)
	httpGrp.GET("/profiles", profileRoutes.GetProfiles)
	httpGrp.GET("/profiles/:id", profileRoutes.GetProfileByID)
	httpGrp.PUT("/profiles/:id", profileRoutes.UpdateProfile)

	httpGrp.GET("/ocsp/:ocsp_request", ocspRoutes.Verify)
	httpGrp.POST("/ocsp", ocspRoutes.Verify)

	httpGrp.GET("/crl/:id", crlRoutes.CRL)
	httpGrp.POST("/crl/:id/calculate", crlRoutes.CalculateCRL)
	httpGrp.POST("/issuing-points", crlRoutes.CreateIssuingPoint)
	httpGrp.GET("/issuing-points", crlRoutes.GetIssuingPoints)
	httpGrp.GET("/issuing-points/:id", crlRoutes.GetIssuingPointByID)
	httpGrp.PUT("/issuing-points/:id", crlRoutes.UpdateIssuingPoint)
}
