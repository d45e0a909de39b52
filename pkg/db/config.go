package db

import (
	"fmt"
	"log/slog"
)

// DBConfigFromYamlObj builds the connection config of a DB from its yaml section.
func DBConfigFromYamlObj(yamlObj DBConfigYaml, orgIDs []string) DBConfig {
	if yamlObj.ConnectionStr == "" {
		slog.Error("couldn't read DB connection string")
		panic("couldn't read DB connection string")
	}

	var URI string
	if yamlObj.hasCredentials() {
		URI = fmt.Sprintf(`mongodb%s://%s:%s@%s`, yamlObj.ConnectionPrefix, yamlObj.Username, yamlObj.Password, yamlObj.ConnectionStr)
	} else {
		URI = fmt.Sprintf(`mongodb%s://%s`, yamlObj.ConnectionPrefix, yamlObj.ConnectionStr)
	}

	timeout := yamlObj.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT_SECONDS
	}

	maxPoolSize := yamlObj.MaxPoolSize
	if maxPoolSize < 0 {
		maxPoolSize = 0
	}

	return DBConfig{
		URI:              URI,
		Timeout:          timeout,
		IdleConnTimeout:  yamlObj.IdleConnTimeout,
		MaxPoolSize:      uint64(maxPoolSize),
		NoCursorTimeout:  yamlObj.UseNoCursorTimeout,
		DBNamePrefix:     yamlObj.DBNamePrefix,
		OrgIDs:           orgIDs,
		RunIndexCreation: yamlObj.RunIndexCreation,
	}
}

const DEFAULT_TIMEOUT_SECONDS = 30
