package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/dmitrijs2005/docvault/internal/timex"
)

// JsonConfig is the JSON-file DTO for Config. Interval fields use
// timex.Duration, which accepts both "15m" strings and integer nanoseconds.
// After unmarshalling, values are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	ShareBaseURL     string         `json:"share_base_url"`
	ShareTTL         timex.Duration `json:"share_ttl"`
	PutURLValidity   timex.Duration `json:"put_url_validity"`
	ViewURLValidity  timex.Duration `json:"view_url_validity"`
	ShareURLValidity timex.Duration `json:"share_url_validity"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If no flag is given, nothing is
// loaded. An unreadable or invalid file panics: a config file that exists
// but cannot be applied is a deployment error.
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

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.ShareBaseURL = c.ShareBaseURL
	config.ShareTTL = c.ShareTTL.Duration
	config.PutURLValidity = c.PutURLValidity.Duration
	config.ViewURLValidity = c.ViewURLValidity.Duration
	config.ShareURLValidity = c.ShareURLValidity.Duration
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
