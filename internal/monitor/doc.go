// Package monitor implements the Ferroscope terminal dashboard.
//
// The dashboard lists every node with its latest CPU and RAM readings and
// fleet-wide totals. A node can be opened to show its CPU and RAM history
// charts, service health and system information. Without a session it shows
// a login form.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: holds screen state (nodes, snapshots, selection, detail data)
//   - Update: processes keystrokes, poller results and session events
//   - View: renders the current screen to a string
//
// # Polling
//
// Every screen owns a poller.Scope. Entering a screen starts its pollers;
// leaving it closes the scope, which cancels them and waits until none can
// deliver again. Pollers push results onto a buffered channel that a single
// outstanding command drains back into Update. Each scope has a generation
// number, and results from a closed scope are ignored.
//
//	dashboard  node list (poll.nodes), one snapshot poller per node (poll.snapshot)
//	detail     CPU history, RAM history, services, node info (poll.history)
//	login      nothing
//
// A 401 anywhere ends the session. The session manager's expiry callback is
// Model.NotifySessionExpired, which queues SessionExpiredMsg on the events
// channel; Update then closes all scopes and shows the login form.
package monitor
