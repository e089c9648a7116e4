package requestlog

// Logger records entries.
type Logger interface {
	Log(entry *Entry)
}

// Store records entries and answers queries about them.
type Store interface {
	Logger

	// Get returns the entry with id, or nil.
	Get(id string) *Entry

	// List returns entries newest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of stored entries.
	Count() int
}

// Filter selects entries in List. Zero fields match everything.
type Filter struct {
	// Method matches case-insensitively.
	Method string

	// Path matches entries whose path starts with it.
	Path string

	Status int

	// HasError selects entries with (true) or without (false) an error.
	HasError *bool

	// Aborted selects aborted (true) or answered (false) requests.
	Aborted *bool

	Limit  int
	Offset int
}

// Subscriber receives new entries.
type Subscriber chan *Entry

// SubscribableStore is a Store that streams new entries.
type SubscribableStore interface {
	Store

	// Subscribe returns a channel of new entries and a function that
	// unsubscribes and closes it.
	Subscribe() (Subscriber, func())
}
