package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/revpay/internal/flagx"
	"github.com/dmitrijs2005/revpay/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. It uses
// timex.Duration for interval fields so values can be written either as
// strings such as "15m" or as integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	MaxFailedLoginAttempts  int            `json:"max_failed_login_attempts"`
	LockTimeout             timex.Duration `json:"lock_timeout"`
	FieldEncryptionKey      string         `json:"field_encryption_key"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flags. If neither flag is set, no file is loaded. An unreadable or
// invalid file panics: a present-but-broken config file is a deployment
// error, not a condition to run through.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SessionValidityDuration = time.Duration(c.SessionValidityDuration.Duration)
	config.MaxFailedLoginAttempts = c.MaxFailedLoginAttempts
	config.LockTimeout = time.Duration(c.LockTimeout.Duration)
	config.FieldEncryptionKey = c.FieldEncryptionKey
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
