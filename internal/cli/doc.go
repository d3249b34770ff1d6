// Package cli implements the ferro command-line interface.
//
// Each Cobra command delegates to a function in this package that loads
// config, opens the session and talks to the monitoring API through the
// shared client:
//
//	ferro monitor          - live dashboard
//	ferro login            - sign in and store the session token
//	ferro logout           - forget the session
//	ferro whoami           - describe the stored session
//	ferro nodes            - one-shot node listing
//	ferro node <id>        - one node in detail
//	ferro devserver        - local API with synthetic telemetry
//
// # Flag Handling
//
// Global flags (--config, --api-url, --no-color, --verbose) live on the
// root command. Commands that print data accept --json, which switches to
// machine mode: output and errors are written as a JSONEnvelope on stdout.
//
// # Sessions
//
// The client reports 401s to the session manager, which clears the token.
// One-shot commands check for that after fetching and fail with an AUTH
// error; the dashboard is told through Model.NotifySessionExpired instead.
package cli
