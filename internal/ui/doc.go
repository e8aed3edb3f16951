// Package ui provides helpers for formatting human-readable console output.
//
// The helpers render migration progress as concise icon-prefixed lines so that
// command feedback remains actionable for CLI users while detailed telemetry
// continues to flow through structured loggers.
package ui
