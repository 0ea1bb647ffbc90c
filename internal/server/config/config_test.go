package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args []string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"server"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, 7*24*time.Hour, c.ShareTTL)
	assert.Equal(t, 15*time.Minute, c.PutURLValidity)
	assert.Equal(t, time.Hour, c.ViewURLValidity)
	assert.Equal(t, 10*time.Minute, c.ShareURLValidity)
	assert.NotEmpty(t, c.DatabaseDSN)
	assert.NotEmpty(t, c.S3Bucket)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	withArgs(t, []string{"-a", ":9090", "-b", "vault-bucket", "-t", "48"})

	c := LoadConfig()

	assert.Equal(t, ":9090", c.EndpointAddrHTTP)
	assert.Equal(t, "vault-bucket", c.S3Bucket)
	assert.Equal(t, 48*time.Hour, c.ShareTTL)
}

func TestLoadConfig_JsonOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	jc := JsonConfig{
		EndpointAddrHTTP: ":7070",
		DatabaseDSN:      "postgres://test",
		SecretKey:        "json-secret",
		ShareBaseURL:     "https://vault.example.com",
		S3RootUser:       "json-user",
		S3RootPassword:   "json-pass",
		S3Bucket:         "json-bucket",
		S3Region:         "eu-west-1",
		S3BaseEndpoint:   "http://minio:9000/",
	}
	raw, err := json.Marshal(jc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	withArgs(t, []string{"-c", path})

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, ":7070", c.EndpointAddrHTTP)
	assert.Equal(t, "json-secret", c.SecretKey)
	assert.Equal(t, "https://vault.example.com", c.ShareBaseURL)
	assert.Equal(t, "eu-west-1", c.S3Region)
}
