package config

import (
	"fmt"
	"sort"
	"time"
)

// Config holds runtime settings for the CRM CLI.
//
// Fields:
//   - APIBaseURL: scheme://host:port of the CRM API, without the /api/v1 prefix.
//   - DBPath: SQLite file holding the local profile (the session token).
//   - RequestTimeout: upper bound for a single API request.
//   - PingInterval: how often the CLI probes API reachability; 0 disables it.
//   - LogLevel: debug, info, warn or error.
//   - RoleNames: display name -> numeric role id as issued in tokens.
//   - ReportsRole: name from RoleNames allowed to open reports; empty means
//     any logged-in user.
type Config struct {
	APIBaseURL     string
	DBPath         string
	RequestTimeout time.Duration
	PingInterval   time.Duration
	LogLevel       string
	RoleNames      map[string]int64
	ReportsRole    string
}

// LoadDefaults populates c with sensible defaults. No role names are set:
// role ids differ between deployments and must come from configuration.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080"
	c.DBPath = "crmclient.db"
	c.RequestTimeout = 10 * time.Second
	c.PingInterval = 30 * time.Second
	c.LogLevel = "info"
	c.RoleNames = map[string]int64{}
	c.ReportsRole = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON or YAML file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}

// RoleName returns the configured name for id, or "role <id>" when none is
// configured.
func (c *Config) RoleName(id int64) string {
	names := make([]string, 0, len(c.RoleNames))
	for name, v := range c.RoleNames {
		if v == id {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("role %d", id)
	}
	sort.Strings(names)
	return names[0]
}

// ReportsRoleID resolves ReportsRole. ok is false when reports are not gated.
// An unknown name is an error so a typo cannot silently open the gate.
func (c *Config) ReportsRoleID() (id int64, ok bool, err error) {
	if c.ReportsRole == "" {
		return 0, false, nil
	}
	id, found := c.RoleNames[c.ReportsRole]
	if !found {
		return 0, false, fmt.Errorf("reports_role %q is not in role_names", c.ReportsRole)
	}
	return id, true, nil
}
