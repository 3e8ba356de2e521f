// Package config loads runtime configuration for the CRM CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file (by extension) named by -c/-config, or by
//     $CRM_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   CRM API base URL
//	-d string   local profile database path
//	-t int      request timeout (seconds)
//	-i int      reachability check interval (seconds)
//	-l string   log level
//
// # File schema (JSON shown; YAML uses the same keys)
//
//	{
//	  "api_base_url": "http://localhost:8080",
//	  "db_path": "crmclient.db",
//	  "request_timeout": "10s",
//	  "ping_interval": "30s",
//	  "log_level": "info",
//	  "role_names": {"sales_agent": 1, "reception": 2},
//	  "reports_role": "sales_agent"
//	}
//
// role_names has no default. Role ids are whatever the backend puts into
// tokens and are known to differ between deployments.
package config
