// Package config provides centralized configuration management for econlab.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables prefixed with ECONLAB_ (highest priority)
//	2. A YAML file named by ECONLAB_CONFIG_FILE, or config.yaml / configs/config.yaml
//	3. Built-in defaults from Default()
//
// A key present in the file or the environment always applies, so false and
// zero values can switch features off.
//
// Example:
//
//	ECONLAB_SERVER_PORT=9090
//	ECONLAB_REGRESSION_CONDITION_LIMIT=1e10
//	ECONLAB_TELEMETRY_TRACE_EXPORTER=stdout
package config
