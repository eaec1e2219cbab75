package routes

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/config"
	"github.com/veridiapki/veridia/pkg/controllers"
	"github.com/veridiapki/veridia/pkg/models"
)

func NewGinEngine(logger *logrus.Entry) *gin.Engine {
	gin.ForceConsoleColor()
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		logger.Debugf("Endpoint: %-6s %s", httpMethod, absolutePath)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"*"}

	router := gin.New()
	router.Use(
		cors.New(corsConfig),
		RequestMetadataToContextMiddleware(logger),
		IdentityToContextMiddleware(logger),
		UseLogger(logger),
	)

	return router
}

func RunHttpRouter(logger *logrus.Entry, routerEngine http.Handler, httpServerCfg config.HttpServer, apiInfo models.APIServiceInfo) (int, error) {
	hCheckRoute := controllers.NewHealthCheckRoute(apiInfo)
	mainLogger := logger
	if !httpServerCfg.HealthCheckLogging {
		nooutLogger := logrus.New()
		nooutLogger.Out = io.Discard

		mainLogger = nooutLogger.WithField("", "")
	}

	healthEngine := NewGinEngine(mainLogger)
	healthEngine.GET("/health", hCheckRoute.HealthCheck)

	mainEngine := http.NewServeMux()
	mainEngine.Handle("/", routerEngine)
	mainEngine.Handle("/health", healthEngine)
	mainEngine.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", httpServerCfg.ListenAddress, httpServerCfg.Port)

	t := time.Second * 10
	server := http.Server{
		Addr:         addr,
		Handler:      mainEngine,
		ReadTimeout:  t,
		WriteTimeout: t,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return -1, err
	}

	usedPort := listener.Addr().(*net.TCPAddr).Port
	if strings.HasSuffix(addr, ":0") {
		addr = strings.TrimSuffix(addr, ":0")
	}

	httpErrChan := make(chan error, 1)

	go func() {
		var serveErr error
		if httpServerCfg.Protocol == config.HTTPS {
			logger.Infof("HTTPS server listening on %s:%d", addr, usedPort)
			serveErr = server.ServeTLS(listener, httpServerCfg.CertFile, httpServerCfg.KeyFile)
		} else {
			logger.Infof("HTTP server listening on %s:%d", addr, usedPort)
			serveErr = server.Serve(listener)
		}

		if serveErr != nil {
			logger.Errorf("could not start http server: %s", serveErr)
			httpErrChan <- serveErr
		}
	}()

	// no error within 3 seconds means the server is up
	select {
	case <-time.After(3 * time.Second):
		logger.Info("HTTP server ready to accept requests")
	case err := <-httpErrChan:
		return -1, err
	}

	return usedPort, nil
}
