// Package observability provides structured logging and metrics
// for the auth service.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - Request ID propagation into log fields
//   - Prometheus counters for authentication outcomes
//   - Password hashing latency histograms
package observability
