package main

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/conductor-oer/conductor-backend/pkg/db"
	peerreview "github.com/conductor-oer/conductor-backend/pkg/peer-review"
	"github.com/conductor-oer/conductor-backend/pkg/peer-review/exporter"
	"github.com/conductor-oer/conductor-backend/pkg/utils"
	"gopkg.in/yaml.v2"

	prDB "github.com/conductor-oer/conductor-backend/pkg/db/peer-review"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_PEER_REVIEW_DB_USERNAME = "PEER_REVIEW_DB_USERNAME"
	ENV_PEER_REVIEW_DB_PASSWORD = "PEER_REVIEW_DB_PASSWORD"
)

type PeerReviewExportTask struct {
	OrgID        string `json:"org_id" yaml:"org_id"`
	ProjectID    string `json:"project_id" yaml:"project_id"`
	ExportFormat string `json:"export_format" yaml:"export_format"` // csv or json
}

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		PeerReviewDB db.DBConfigYaml `json:"peer_review_db" yaml:"peer_review_db"`
	} `json:"db_configs" yaml:"db_configs"`

	ExportPath string `json:"export_path" yaml:"export_path"`

	PeerReviewExports struct {
		// how far back reviews are included, e.g. "30d" or "720h"
		Lookback string `json:"lookback" yaml:"lookback"`
		// export files older than this are removed, e.g. "90d"
		Retention   string                 `json:"retention" yaml:"retention"`
		OverrideOld bool                   `json:"override_old" yaml:"override_old"`
		ExportTasks []PeerReviewExportTask `json:"export_tasks" yaml:"export_tasks"`
	} `json:"peer_review_exports" yaml:"peer_review_exports"`
}

var conf config

var (
	peerReviewDBService *prDB.PeerReviewDBService
	lookback            time.Duration
	retention           time.Duration
)

// initJob reads the config, sets up logging and connects to the DB.
func initJob() {
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

	if err := checkConfig(); err != nil {
		slog.Error("Error reading config", slog.String("error", err.Error()))
		panic(err)
	}

	// init db
	initDBs()

	if _, err := os.Stat(conf.ExportPath); os.IsNotExist(err) {
		// create folder
		err = os.MkdirAll(conf.ExportPath, os.ModePerm)
		if err != nil {
			slog.Error("Error creating export path", slog.String("error", err.Error()))
			panic(err)
		}
		slog.Info("Created export path", slog.String("path", conf.ExportPath))
	}
}

func checkConfig() error {
	var err error
	lookback, err = utils.ParseDurationString(conf.PeerReviewExports.Lookback)
	if err != nil {
		return fmt.Errorf("lookback: %w", err)
	}
	retention, err = utils.ParseDurationString(conf.PeerReviewExports.Retention)
	if err != nil {
		return fmt.Errorf("retention: %w", err)
	}
	if retention < 24*time.Hour {
		return fmt.Errorf("retention must be at least one day")
	}

	if conf.ExportPath == "" {
		return fmt.Errorf("export path must be set to define where to store the export files")
	}

	for i, task := range conf.PeerReviewExports.ExportTasks {
		if !utils.IsURLSafe(task.OrgID) || !utils.IsURLSafe(task.ProjectID) {
			return fmt.Errorf("export task %d: org_id and project_id must be url safe", i)
		}
		if task.ExportFormat != exporter.FORMAT_CSV && task.ExportFormat != exporter.FORMAT_JSON {
			return fmt.Errorf("export task %d: unsupported format '%s'", i, task.ExportFormat)
		}
	}
	return nil
}

func secretsOverride() {
	// Override secrets from environment variables

	if dbUsername := os.Getenv(ENV_PEER_REVIEW_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.PeerReviewDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_PEER_REVIEW_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.PeerReviewDB.Password = dbPassword
	}
}

func initDBs() {
	orgIDs := getOrgIDs()

	var err error
	peerReviewDBService, err = prDB.NewPeerReviewDBService(db.DBConfigFromYamlObj(conf.DBConfigs.PeerReviewDB, orgIDs))
	if err != nil {
		slog.Error("Error connecting to Peer Review DB", slog.String("error", err.Error()))
		panic(err)
	}

	peerreview.Init(peerReviewDBService, nil)
}

func getOrgIDs() []string {
	orgIDs := []string{}
	for _, task := range conf.PeerReviewExports.ExportTasks {
		if !slices.Contains(orgIDs, task.OrgID) {
			orgIDs = append(orgIDs, task.OrgID)
		}
	}
	return orgIDs
}
