package assemblers

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/veridiapki/veridia/pkg/config"
	"github.com/veridiapki/veridia/pkg/eventbus"
	"github.com/veridiapki/veridia/pkg/eventpub"
	"github.com/veridiapki/veridia/pkg/helpers"
	"github.com/veridiapki/veridia/pkg/jobs"
	auditpub "github.com/veridiapki/veridia/pkg/middlewares/audit"
	"github.com/veridiapki/veridia/pkg/middlewares/metrics"
	"github.com/veridiapki/veridia/pkg/models"
	"github.com/veridiapki/veridia/pkg/routes"
	"github.com/veridiapki/veridia/pkg/services"
	"github.com/veridiapki/veridia/pkg/storage/postgres"
)

type CAServices struct {
	Revocation    services.RevocationService
	Queue         services.RequestQueueService
	Approval      services.ApprovalService
	IssuingPoints services.IssuingPointService
	Profiles      services.ProfileService
	OCSP          services.OCSPService
	Processor     *services.RequestProcessor
	Nonces        *services.NonceManager
}

func AssembleCAServiceWithHTTPServer(conf config.CAConfig, serviceInfo models.APIServiceInfo) (*CAServices, int, error) {
	svcs, err := AssembleCAService(conf)
	if err != nil {
		return nil, -1, fmt.Errorf("could not assemble CA service: %s", err)
	}

	lHttp := helpers.SetupLogger(conf.Server.LogLevel, "CA", "HTTP Server")

	httpEngine := routes.NewGinEngine(lHttp)
	httpGrp := httpEngine.Group("/")
	routes.NewCARoutes(lHttp, httpGrp, svcs.Revocation, svcs.Queue, svcs.Approval, svcs.IssuingPoints, svcs.Profiles, svcs.OCSP, svcs.Nonces)
	port, err := routes.RunHttpRouter(lHttp, httpEngine, conf.Server, serviceInfo)
	if err != nil {
		return nil, -1, fmt.Errorf("could not run CA http server: %s", err)
	}

	return svcs, port, nil
}

func AssembleCAService(conf config.CAConfig) (*CAServices, error) {
	serviceID := "ca"

	lSvc := helpers.SetupLogger(conf.Logs.Level, "CA", "Service")
	lStorage := helpers.SetupLogger(conf.Storage.LogLevel, "CA", "Storage")
	lMessaging := helpers.SetupLogger(conf.PublisherEventBus.LogLevel, "CA", "Event Bus")

	db, err := buildDBConnection(lStorage, conf.Storage)
	if err != nil {
		return nil, fmt.Errorf("could not create storage engine: %s", err)
	}

	certsRepo, err := postgres.NewCertificateRepository(lStorage, db)
	if err != nil {
		return nil, fmt.Errorf("could not initialize certificate storage: %s", err)
	}

	requestsRepo, err := postgres.NewRequestRepository(lStorage, db)
	if err != nil {
		return nil, fmt.Errorf("could not initialize request storage: %s", err)
	}

	issuingPointsRepo, err := postgres.NewIssuingPointRepository(lStorage, db)
	if err != nil {
		return nil, fmt.Errorf("could not initialize issuing point storage: %s", err)
	}

	profilesRepo, err := postgres.NewProfileRepository(lStorage, db)
	if err != nil {
		return nil, fmt.Errorf("could not initialize profile storage: %s", err)
	}

	caCert, caKey, err := loadSigningMaterial(conf.Signing)
	if err != nil {
		return nil, fmt.Errorf("could not load CA signing material: %s", err)
	}

	pub, err := eventbus.NewEventBusPublisher(conf.PublisherEventBus, serviceID, lMessaging)
	if err != nil {
		return nil, fmt.Errorf("could not create event bus publisher: %s", err)
	}

	eventPublisher := eventpub.NewEventPublisherWithSourceMiddleware(&eventpub.CloudEventPublisher{
		Publisher: pub,
		ServiceID: serviceID,
		Logger:    lMessaging,
	}, models.CASource)

	var nonces *services.NonceManager
	if conf.Nonces.Enabled {
		ttl, _ := time.ParseDuration(conf.Nonces.TTL)
		nonces = services.NewNonceManager(lSvc, ttl, conf.Nonces.MaxPerUser)
	}

	issuingPoints := services.NewIssuingPointService(services.IssuingPointServiceBuilder{
		Logger:              lSvc,
		IssuingPointsRepo:   issuingPointsRepo,
		CertificatesRepo:    certsRepo,
		CACertificate:       caCert,
		CRLSigner:           caKey,
		DistributionDomains: conf.CRL.DistributionDomains,
	})

	statusChange := services.NewCertStatusChangeService(services.CertStatusChangeBuilder{
		Logger:              lSvc,
		CertificatesRepo:    certsRepo,
		IssuingPointService: issuingPoints,
	})

	queue := services.NewRequestQueueService(services.RequestQueueBuilder{
		Logger:       lSvc,
		RequestsRepo: requestsRepo,
		Services: map[models.RequestType]services.RequestService{
			models.RequestTypeRevocation:   statusChange,
			models.RequestTypeUnrevocation: statusChange,
		},
	})

	revocation := services.NewRevocationService(services.RevocationServiceBuilder{
		Logger:           lSvc,
		CertificatesRepo: certsRepo,
		Queue:            queue,
		CACertificate:    caCert,
		EventPublisher:   eventPublisher,
		Nonces:           nonces,
		SearchLimit:      conf.Revocation.SearchLimit,
		SearchTime:       time.Duration(conf.Revocation.SearchTimeSeconds) * time.Second,
		AllowOnHold:      conf.Revocation.AllowAgentOnHold,
	})

	revocationSvc := revocation.(*services.RevocationServiceBackend)
	revocation = auditpub.NewRevocationAuditEventPublisher(eventPublisher)(revocation)
	revocation = metrics.NewRevocationMetricsMiddleware()(revocation)
	revocationSvc.SetService(revocation)

	approval := services.NewApprovalService(services.ApprovalServiceBuilder{
		Logger:         lSvc,
		Queue:          queue,
		ProfilesRepo:   profilesRepo,
		Nonces:         nonces,
		EventPublisher: eventPublisher,
		EnforceOwner:   conf.Revocation.EnforceOwner,
	})

	approvalSvc := approval.(*services.ApprovalServiceBackend)
	approval = auditpub.NewApprovalAuditEventPublisher(eventPublisher)(approval)
	approvalSvc.SetService(approval)

	profiles := services.NewProfileService(services.ProfileServiceBuilder{
		Logger:       lSvc,
		ProfilesRepo: profilesRepo,
	})

	processor := services.NewRequestProcessor(services.RequestProcessorBuilder{
		Logger:         lSvc,
		Queue:          queue,
		EventPublisher: eventPublisher,
		RAGroup:        conf.Revocation.RAGroup,
	})

	ocspSvc := services.NewOCSPService(services.OCSPServiceBuilder{
		Logger:        lSvc,
		Revocation:    revocation,
		CACertificate: caCert,
		Signer:        caKey,
	})

	if conf.CRLRefreshJob.Enabled {
		lJob := helpers.SetupLogger(conf.Logs.Level, "CA", "CRL Refresh Job")
		refreshJob := jobs.NewCRLRefreshMonitorJob(issuingPoints, conf.CRLRefreshJob.Frequency, lJob)
		scheduler := jobs.NewJobScheduler(lJob, conf.CRLRefreshJob.Frequency, refreshJob)
		scheduler.Start()
	}

	return &CAServices{
		Revocation:    revocation,
		Queue:         queue,
		Approval:      approval,
		IssuingPoints: issuingPoints,
		Profiles:      profiles,
		OCSP:          ocspSvc,
		Processor:     processor,
		Nonces:        nonces,
	}, nil
}

func buildDBConnection(logger *logrus.Entry, conf config.PluggableStorageEngine) (*gorm.DB, error) {
	switch conf.Provider {
	case config.Postgres:
		return postgres.CreatePostgresDBConnection(logger, conf.Postgres, "ca")
	case config.SQLite:
		return postgres.CreateSQLiteDBConnection(logger, conf.SQLite, "ca")
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", conf.Provider)
	}
}

func loadSigningMaterial(conf config.SigningConfig) (*x509.Certificate, crypto.Signer, error) {
	if conf.CertificateFile == "" && conf.KeyFile == "" {
		commonName := conf.SelfSignedCommonName
		if commonName == "" {
			commonName = "Veridia Ephemeral CA"
		}
		return helpers.GenerateSelfSignedCA(x509.ECDSA, 24*time.Hour*365, commonName)
	}

	caCert, err := helpers.ReadCertificateFromFile(conf.CertificateFile)
	if err != nil {
		return nil, nil, err
	}

	key, err := helpers.ReadPrivateKeyFromFile(conf.KeyFile)
	if err != nil {
		return nil, nil, err
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, nil, fmt.Errorf("private key does not implement crypto.Signer")
	}

	return caCert, signer, nil
}
