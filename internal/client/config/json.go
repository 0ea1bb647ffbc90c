package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/dmitrijs2005/docvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as a
// string like "30s" or as integer nanoseconds. After parsing, values are
// copied into the runtime Config.
type JsonConfig struct {
	ServerAddr     string         `json:"server_addr"`
	AccessToken    string         `json:"access_token"`
	UserID         string         `json:"user_id"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flags (via flagx.JsonConfigFlags). If no flag is given,
// nothing is loaded. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerAddr = jc.ServerAddr
	cfg.AccessToken = jc.AccessToken
	cfg.UserID = jc.UserID
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
}
