// Package query validates and builds history queries.
//
// FromValues turns URL-style parameters (used by both the HTTP API and the
// CLI) into a history.Query. ApplyDefaults and Validate then bound it by the
// configured limits.
package query
