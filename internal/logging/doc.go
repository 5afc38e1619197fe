// Package logging configures the process-wide zerolog logger for the
// runtime and test profiles, with LASDEV_LOG_* environment overrides.
package logging
