// Package requestlog keeps a history of the requests the mock server handled
// so they can be inspected through the admin API.
//
// It is separate from operational logging, which goes through log/slog.
//
//	store := requestlog.NewMemoryStore(1000)
//	h := mapper.NewHandler(resolver, picker, mapper.WithObserver(requestlog.Observer(store)))
//	entries := store.List(&requestlog.Filter{Method: "GET", Limit: 10})
package requestlog
