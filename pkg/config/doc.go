// Package config loads and validates the catalogue's YAML configuration:
// the database (path, driver, WAL, busy timeout), logging, catalogue
// behaviour (base URI, default match result bound), and the maintenance
// schedules.
//
// Values not present in the file take their defaults, so an empty file is
// a valid configuration. A Watcher can reload the file on change with
// debouncing, keeping the previous configuration when a change fails to
// parse.
package config
