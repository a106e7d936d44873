package model

import "time"

// Shared defaults used by the client binary and the dev API stub.
const (
	DefaultAPIURL = "http://127.0.0.1:8000/api"
	DefaultSkin   = "default"

	// DefaultGracePeriod is how long the expired-session message stays
	// visible before the forced logout completes.
	DefaultGracePeriod = 1500 * time.Millisecond

	// HistoryKeep is how many uploads the backend retains.
	HistoryKeep = 5
)
