package main

import (
	"log/slog"
	"os"

	"github.com/conductor-oer/conductor-backend/pkg/apihelpers"
	"github.com/conductor-oer/conductor-backend/pkg/cache"
	"github.com/conductor-oer/conductor-backend/pkg/db"
	emailtemplates "github.com/conductor-oer/conductor-backend/pkg/email-templates"
	peerreview "github.com/conductor-oer/conductor-backend/pkg/peer-review"
	"github.com/conductor-oer/conductor-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	prDB "github.com/conductor-oer/conductor-backend/pkg/db/peer-review"
	sc "github.com/conductor-oer/conductor-backend/pkg/smtp-client"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_PEER_REVIEW_DB_USERNAME = "PEER_REVIEW_DB_USERNAME"
	ENV_PEER_REVIEW_DB_PASSWORD = "PEER_REVIEW_DB_PASSWORD"
	ENV_CONDUCTOR_JWT_SIGN_KEY  = "CONDUCTOR_JWT_SIGN_KEY"
	ENV_REDIS_PASSWORD          = "REDIS_PASSWORD"
	ENV_SMTP_USERNAME           = "SMTP_USERNAME"
	ENV_SMTP_PASSWORD           = "SMTP_PASSWORD"
)

type PeerReviewApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	// Tokens are issued by the Conductor auth service, this service only validates them
	JWTConfig struct {
		SignKey string `json:"sign_key" yaml:"sign_key"`
	} `json:"jwt_config" yaml:"jwt_config"`

	AllowedOrgIDs []string `json:"allowed_org_ids" yaml:"allowed_org_ids"`

	// DB configs
	DBConfigs struct {
		PeerReviewDB db.DBConfigYaml `json:"peer_review_db" yaml:"peer_review_db"`
	} `json:"db_configs" yaml:"db_configs"`

	// Optional, rubrics are read from the DB on every request without it
	RubricCache *cache.RedisConfig `json:"rubric_cache" yaml:"rubric_cache"`

	// Optional mails to the notify list of a project on new reviews
	Notifications struct {
		SmtpServerConfigPath string `json:"smtp_server_config_path" yaml:"smtp_server_config_path"`
		Subject              string `json:"subject" yaml:"subject"`
		TemplatePath         string `json:"template_path" yaml:"template_path"`
	} `json:"notifications" yaml:"notifications"`
}

var (
	peerReviewDBService *prDB.PeerReviewDBService
	smtpClients         *sc.SmtpClients
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(conf.Logging)

	// Override secrets from environment variables
	secretsOverride()

	if conf.JWTConfig.SignKey == "" {
		slog.Error("JWT sign key not set - configure " + ENV_CONDUCTOR_JWT_SIGN_KEY + " env variable.")
		panic("JWT sign key not set")
	}

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	initPeerReviewService()
	initNotifications()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_PEER_REVIEW_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.PeerReviewDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_PEER_REVIEW_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.PeerReviewDB.Password = dbPassword
	}

	if jwtSignKey := os.Getenv(ENV_CONDUCTOR_JWT_SIGN_KEY); jwtSignKey != "" {
		conf.JWTConfig.SignKey = jwtSignKey
	}

	if redisPassword := os.Getenv(ENV_REDIS_PASSWORD); redisPassword != "" && conf.RubricCache != nil {
		conf.RubricCache.Password = redisPassword
	}
}

func initDBs() {
	var err error
	peerReviewDBService, err = prDB.NewPeerReviewDBService(db.DBConfigFromYamlObj(conf.DBConfigs.PeerReviewDB, conf.AllowedOrgIDs))
	if err != nil {
		slog.Error("Error connecting to Peer Review DB", slog.String("error", err.Error()))
		panic(err)
	}
}

func initPeerReviewService() {
	var rubricCache peerreview.RubricCache
	if conf.RubricCache != nil && conf.RubricCache.Address != "" {
		client, err := cache.NewRedisClient(*conf.RubricCache)
		if err != nil {
			slog.Error("Error connecting to rubric cache, continuing without", slog.String("address", conf.RubricCache.Address), slog.String("error", err.Error()))
		} else {
			rubricCache = cache.NewRubricCache(client, conf.RubricCache.TTL)
			slog.Info("Rubric cache enabled", slog.String("address", conf.RubricCache.Address))
		}
	}

	peerreview.Init(peerReviewDBService, rubricCache)
}

func initNotifications() {
	if conf.Notifications.SmtpServerConfigPath == "" {
		return
	}

	servers := sc.SmtpServerList{}
	if err := servers.ReadFromFile(conf.Notifications.SmtpServerConfigPath); err != nil {
		slog.Error("Error reading SMTP server config, notifications disabled", slog.String("error", err.Error()))
		return
	}
	servers.OverrideAuth(os.Getenv(ENV_SMTP_USERNAME), os.Getenv(ENV_SMTP_PASSWORD))

	body, err := emailtemplates.LoadTemplate(emailtemplates.TEMPLATE_PEER_REVIEW_RECEIVED, conf.Notifications.TemplatePath)
	if err != nil {
		slog.Error("Error loading notification template, notifications disabled", slog.String("error", err.Error()))
		return
	}

	smtpClients, err = sc.NewSmtpClients(servers)
	if err != nil {
		slog.Error("Error creating SMTP clients, notifications disabled", slog.String("error", err.Error()))
		return
	}
	peerreview.InitNotifications(smtpClients, conf.Notifications.Subject, body)
	slog.Info("Peer review notifications enabled", slog.Int("smtpServers", len(servers.Servers)))
}
