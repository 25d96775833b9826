// Package retention prunes old conversion history.
//
// Two limits apply, each disabled when zero: records older than Days are
// deleted, then the oldest records beyond MaxRecords. Pruning runs on
// demand through Prune or on a cron schedule through Start.
package retention
