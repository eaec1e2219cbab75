package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia"
	"github.com/veridiapki/veridia/pkg/models"
)

const agentIDHeader = "x-agent-id"
const sessionIDHeader = "x-session-id"

// RequestMetadataToContextMiddleware copies the caller-supplied correlation
// headers into the request context under the keys the service layer and the
// logger read.
func RequestMetadataToContextMiddleware(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqCtx := c.Request.Context()

		if reqID := c.Request.Header.Get(models.HttpRequestIDHeader); reqID != "" {
			reqCtx = context.WithValue(reqCtx, veridia.ContextKeyRequestID, reqID)
		}

		if source := c.Request.Header.Get(models.HttpSourceHeader); source != "" {
			reqCtx = context.WithValue(reqCtx, veridia.ContextKeySource, source)
		}

		if sessionID := c.Request.Header.Get(sessionIDHeader); sessionID != "" {
			reqCtx = context.WithValue(reqCtx, veridia.ContextKeySessionID, sessionID)
		}

		c.Request = c.Request.WithContext(reqCtx)
		c.Next()
	}
}

// IdentityToContextMiddleware resolves the caller identity: the leaf client
// certificate when the request came over mTLS, the x-agent-id header
// otherwise.
func IdentityToContextMiddleware(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqCtx := c.Request.Context()

		if c.Request.TLS != nil && len(c.Request.TLS.PeerCertificates) > 0 {
			clientCert := c.Request.TLS.PeerCertificates[0]
			reqCtx = context.WithValue(reqCtx, veridia.ContextKeyAuthType, "mtls")
			reqCtx = context.WithValue(reqCtx, veridia.ContextKeyAuthID, clientCert.Subject.CommonName)
		} else if agentID := c.Request.Header.Get(agentIDHeader); agentID != "" {
			reqCtx = context.WithValue(reqCtx, veridia.ContextKeyAuthType, "header")
			reqCtx = context.WithValue(reqCtx, veridia.ContextKeyAuthID, agentID)
		}

		c.Request = c.Request.WithContext(reqCtx)
		c.Next()
	}
}

func UseLogger(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		logger.Infof("[Request] %v |%3d| %13v | %15s |%-7s %s",
			start.Format("2006/01/02 - 15:04:05"),
			c.Writer.Status(),
			latency,
			c.ClientIP(),
			c.Request.Method,
			c.Request.URL.Path,
		)
	}
}
