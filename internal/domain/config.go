package domain

// Process-wide compile-time defaults. Components accept these as
// constructor options rather than reading them from the environment —
// this core has no environment-variable or CLI configuration surface
// (see internal/engine.Option and internal/gateway.MockOption).
const (
	// MaxRetry is the upload-failure count at which a JournalEntry is
	// shelved: excluded from future upload attempts but left in the store.
	MaxRetry = 5

	// SimulatedNetworkDelayMS is the artificial latency MockGateway sleeps
	// before returning, in milliseconds. Production gateways ignore this.
	SimulatedNetworkDelayMS = 800

	// SimulatedFailurePercent is the percentage of MockGateway calls that
	// fail with a transient error, used to exercise retry-cap behavior in
	// tests and demos.
	SimulatedFailurePercent = 15
)
