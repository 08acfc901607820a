// Package config provides centralized configuration management for the
// market desk service and the weekly report CLI.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern MARKETDESK_<SECTION>_<FIELD>:
//
//	MARKETDESK_SERVER_PORT=8080
//	MARKETDESK_LOGGING_LEVEL=debug
//	MARKETDESK_DATA_DIR=/srv/marketdesk/data
//	MARKETDESK_DATA_TREASURY=yields_2024.csv,yields_2025.csv
//	MARKETDESK_VIEWS_CYCLE_MONTHS=18
//
// MARKETDESK_CONFIG names the YAML file explicitly; otherwise config.yaml and
// configs/config.yaml are searched.
//
// # Data Files
//
// The data section lists the static exports each dataset is parsed from:
//
//	data:
//	  dir: data
//	  bulletins: bulletins.yaml
//	  treasury: [yields_2024.csv, yields_2025.csv]
//	  rates: [rates.csv]
//	  credit: [market.csv]
//	  watchlist: [market.csv]
//	  industries: [market.csv]
//	  fed_futures: [futures.csv]
//
// Relative paths are resolved against the data directory, which itself is
// relative to the config file.
//
// # Validation
//
// Loaded values are checked with go-playground/validator struct tags.
//
// # Testing
//
// Default returns a configuration that needs no environment or files.
package config
