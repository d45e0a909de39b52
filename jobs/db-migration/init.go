package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/conductor-oer/conductor-backend/pkg/db"
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

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		PeerReviewDB db.DBConfigYaml `json:"peer_review_db" yaml:"peer_review_db"`
	} `json:"db_configs" yaml:"db_configs"`

	OrgIDs []string `json:"org_ids" yaml:"org_ids"`

	// Task configurations
	TaskConfigs TaskConfigs `json:"task_configs" yaml:"task_configs"`
}

type TaskConfigs struct {
	DropIndexes    DropIndexesMode      `json:"drop_indexes" yaml:"drop_indexes"`
	CreateIndexes  bool                 `json:"create_indexes" yaml:"create_indexes"`
	GetIndexes     bool                 `json:"get_indexes" yaml:"get_indexes"`
	MigrationTasks MigrationTasksConfig `json:"migration_tasks" yaml:"migration_tasks"`
}

type MigrationTasksConfig struct {
	ResolveRubricOrders bool `json:"resolve_rubric_orders" yaml:"resolve_rubric_orders"`
}

type DropIndexesMode string

const (
	DropIndexesModeAll      DropIndexesMode = "all"
	DropIndexesModeDefaults DropIndexesMode = "defaults"
	DropIndexesModeNone     DropIndexesMode = "none"
)

func (mode DropIndexesMode) IsValid() bool {
	switch mode {
	case DropIndexesModeAll, DropIndexesModeDefaults, DropIndexesModeNone:
		return true
	default:
		return false
	}
}

var conf config

var peerReviewDBService *prDB.PeerReviewDBService

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

	if err := validateConfig(conf); err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(conf.Logging)

	// Override secrets from environment variables
	secretsOverride()

	// init db
	initDBs()
}

func validateConfig(c config) error {
	// empty means none
	if c.TaskConfigs.DropIndexes == "" {
		return nil
	}
	if !c.TaskConfigs.DropIndexes.IsValid() {
		return fmt.Errorf("invalid drop indexes mode for task_configs.drop_indexes: %q. Use one of: %v", c.TaskConfigs.DropIndexes, []DropIndexesMode{DropIndexesModeAll, DropIndexesModeDefaults, DropIndexesModeNone})
	}
	return nil
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_PEER_REVIEW_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.PeerReviewDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_PEER_REVIEW_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.PeerReviewDB.Password = dbPassword
	}
}

func initDBs() {
	dbConf := db.DBConfigFromYamlObj(conf.DBConfigs.PeerReviewDB, conf.OrgIDs)
	// index tasks are run explicitly by this job
	dbConf.RunIndexCreation = false

	var err error
	peerReviewDBService, err = prDB.NewPeerReviewDBService(dbConf)
	if err != nil {
		slog.Error("Error connecting to Peer Review DB", slog.String("error", err.Error()))
		panic(err)
	}
	slog.Info("Database connection established", slog.Int("orgCount", len(conf.OrgIDs)))
}
