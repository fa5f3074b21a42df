// Package observability records install metrics for the textfile collector.
package observability
