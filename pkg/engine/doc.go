// Package engine runs the mock server.
//
// A Server owns one mapper.Handler together with the pieces around it:
//
//	┌───────────────────────────────────────────────────────────┐
//	│  http.Server (Host:Port, read/write timeouts)             │
//	│                                                           │
//	│   /__counterfeit/health     liveness probe                │
//	│   /__counterfeit/requests   request history (requestlog)  │
//	│   /__counterfeit/requests/stream   new entries as SSE     │
//	│   /__counterfeit/cursors    round-robin cursor reset      │
//	│   /__counterfeit/metrics    Prometheus exposition         │
//	│                                                           │
//	│   everything else ──▶ mapper.Handler                      │
//	│        resolver ─▶ round-robin picker ─▶ mutations        │
//	└───────────────────────────────────────────────────────────┘
//
// With Watch enabled an fsnotify watcher restarts the cursor of any
// directory whose files are added, removed or renamed.
//
// A response directory named "__counterfeit" at the top of the base
// directory is shadowed by the admin endpoints.
package engine
