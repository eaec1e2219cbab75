package config

type CAConfig struct {
	Logs              Logging                `mapstructure:"logs"`
	Server            HttpServer             `mapstructure:"server"`
	PublisherEventBus EventBusEngine         `mapstructure:"publisher_event_bus"`
	Storage           PluggableStorageEngine `mapstructure:"storage"`
	Signing           SigningConfig          `mapstructure:"signing"`
	CRL               CRLConfig              `mapstructure:"crl"`
	CRLRefreshJob     MonitoringJob          `mapstructure:"crl_refresh_job"`
	Nonces            NoncesConfig           `mapstructure:"nonces"`
	Revocation        RevocationConfig       `mapstructure:"revocation"`
}

// SigningConfig points at the CA signing certificate and key used to sign
// CRLs. When both file paths are empty an ephemeral self-signed CA is
// generated at startup, which only makes sense for local development.
type SigningConfig struct {
	CertificateFile      string `mapstructure:"certificate_file"`
	KeyFile              string `mapstructure:"key_file"`
	SelfSignedCommonName string `mapstructure:"self_signed_common_name"`
}

type CRLConfig struct {
	DistributionDomains []string `mapstructure:"distribution_domains"`
}

type MonitoringJob struct {
	Enabled   bool   `mapstructure:"enabled"`
	Frequency string `mapstructure:"frequency"`
}

type NoncesConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	TTL        string `mapstructure:"ttl"`
	MaxPerUser int    `mapstructure:"max_per_user"`
}

type RevocationConfig struct {
	SearchLimit       int    `mapstructure:"search_limit"`
	SearchTimeSeconds int    `mapstructure:"search_time_seconds"`
	AllowAgentOnHold  bool   `mapstructure:"allow_agent_on_hold"`
	EnforceOwner      bool   `mapstructure:"enforce_owner"`
	RAGroup           string `mapstructure:"ra_group"`
}
