// Package logging constructs the slog loggers used across the ETL pipeline.
//
// Two output formats are supported: a compact console format for interactive
// runs and a JSON format for log files and machine consumption. Typed attr
// helpers keep call sites terse and field names consistent.
package logging
