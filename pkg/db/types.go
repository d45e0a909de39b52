package db

import "time"

const PEER_REVIEW_DB_SUFFIX = "_peerReviewDB"

// DBConfig is the resolved connection config of the peer review DB. Every
// org in OrgIDs gets its own database on the same cluster.
type DBConfig struct {
	URI              string
	DBNamePrefix     string
	Timeout          int
	NoCursorTimeout  bool
	MaxPoolSize      uint64
	IdleConnTimeout  int
	OrgIDs           []string
	RunIndexCreation bool
}

// OrgDBName returns the database an org's rubrics, reviews and settings live in.
func OrgDBName(prefix string, orgID string) string {
	return prefix + orgID + PEER_REVIEW_DB_SUFFIX
}

func (c DBConfig) OrgDBName(orgID string) string {
	return OrgDBName(c.DBNamePrefix, orgID)
}

func (c DBConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// MaxConnIdleTime is zero (no limit) unless idle_conn_timeout is set.
func (c DBConfig) MaxConnIdleTime() time.Duration {
	if c.IdleConnTimeout <= 0 {
		return 0
	}
	return time.Duration(c.IdleConnTimeout) * time.Second
}

// DBConfigYaml is the db section of a service or job config file.
// Username and password are usually set from the environment.
type DBConfigYaml struct {
	ConnectionStr      string `yaml:"connection_str"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	ConnectionPrefix   string `yaml:"connection_prefix"`
	Timeout            int    `yaml:"timeout"`
	IdleConnTimeout    int    `yaml:"idle_conn_timeout"`
	MaxPoolSize        int    `yaml:"max_pool_size"`
	UseNoCursorTimeout bool   `yaml:"use_no_cursor_timeout"`
	DBNamePrefix       string `yaml:"db_name_prefix"`
	RunIndexCreation   bool   `yaml:"run_index_creation"`
}

func (y DBConfigYaml) hasCredentials() bool {
	return y.Username != "" && y.Password != ""
}
