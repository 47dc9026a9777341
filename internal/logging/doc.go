// Package logging provides structured logging for the wifiprov daemon.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used by the connection manager and the provisioning portal.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw request bytes, poll iterations)
//   - Info: Normal operations (state transitions, accepted connections)
//   - Warn: Non-fatal issues (failed connection attempts, rejected submissions)
//   - Error: Fatal issues (storage failures, driver faults)
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("Connected to wifi",
//	    zap.String("ssid", creds.SSID),
//	    zap.String("ip", info.IP),
//	)
//
// # Specialized Logging
//
// Connection Logging:
//
//	logging.LogConnection(remoteAddr, "connection_accepted")
//	logging.LogConnection(remoteAddr, "connection_closed")
//
// HTTP Logging (provisioning portal):
//
//	logging.LogHTTPRequest(remoteAddr, method, path, headers)
//	logging.LogHTTPResponse(remoteAddr, 400, headers)
//
// State Logging:
//
//	logging.LogStateTransition("DISCONNECTED", "CONNECTING", "credentials present")
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given and WIFIPROV_LOG_LEVEL is unset, logging is silent.
//
// # Secrets
//
// Wifi passwords are never passed to the logger. Callers log the SSID only.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
