// Package metrics exposes Prometheus metrics for the mock server.
//
// Metrics live on a private registry owned by a Metrics value, so several
// servers (and tests) can run in one process without colliding on names.
//
//   - counterfeit_requests_total: mapped requests (labels: method, status)
//   - counterfeit_request_duration_seconds: mapping latency (labels: method)
//   - counterfeit_not_found_total: requests answered with 404
//   - counterfeit_aborted_requests_total: requests dropped without a response
//   - counterfeit_placeholders_created_total: empty response files created
//   - counterfeit_cursor_directories: directories with a round-robin cursor
//   - counterfeit_admin_requests_total: admin endpoint requests (labels: path, status)
//
// Aborted requests use the status label "aborted".
//
// # Usage
//
//	m := metrics.New()
//	h := mapper.NewHandler(resolver, picker, mapper.WithObserver(m.Observe))
//	mux.Handle("/__counterfeit/metrics", m.Handler())
package metrics
