package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/crmclient/internal/flagx"
	"github.com/dmitrijs2005/crmclient/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for decoding the config file, JSON or
// YAML. Durations go through timex.Duration so they can be written as "5s"
// or as nanoseconds.
type FileConfig struct {
	APIBaseURL     string           `json:"api_base_url" yaml:"api_base_url"`
	DBPath         string           `json:"db_path" yaml:"db_path"`
	RequestTimeout *timex.Duration  `json:"request_timeout" yaml:"request_timeout"`
	PingInterval   *timex.Duration  `json:"ping_interval" yaml:"ping_interval"`
	LogLevel       string           `json:"log_level" yaml:"log_level"`
	RoleNames      map[string]int64 `json:"role_names" yaml:"role_names"`
	ReportsRole    string           `json:"reports_role" yaml:"reports_role"`
}

// decodeFile picks the format from the extension: .yaml and .yml are YAML,
// anything else is JSON.
func decodeFile(path string, data []byte, fc *FileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, fc); err != nil {
			return fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, fc); err != nil {
			return fmt.Errorf("parse json config %s: %w", path, err)
		}
	}
	return nil
}

// parseFile overlays Config with values loaded from the file named by
// -c/-config or $CRM_CONFIG. Keys absent from the file keep their current
// value. Panics on read or decode errors.
func parseFile(cfg *Config) {
	configFile := flagx.ConfigPath()
	if configFile == "" {
		return
	}

	var fc FileConfig

	data, err := os.ReadFile(configFile)
	if err != nil {
		panic(err)
	}
	if err := decodeFile(configFile, data, &fc); err != nil {
		panic(err)
	}

	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.PingInterval != nil {
		cfg.PingInterval = fc.PingInterval.Duration
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.RoleNames != nil {
		cfg.RoleNames = maps.Clone(fc.RoleNames)
	}
	if fc.ReportsRole != "" {
		cfg.ReportsRole = fc.ReportsRole
	}
}
