// Package export writes conversion history as JSON, JSON Lines or CSV.
package export
