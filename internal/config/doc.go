// Package config loads the YAML configuration file.
//
// Values are resolved in order: built-in defaults, the YAML file, then the
// environment variables SUPICORE_DATABASE_DSN, SUPICORE_DATABASE_DIALECT
// and SUPICORE_LOG_LEVEL. The result is checked against the #Config
// definition in schema.cue.
package config
