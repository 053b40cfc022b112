// Package harness runs declarative YAML scenarios end to end against a
// fresh in-memory store, the real repository, engine, and a MockGateway.
//
// Unlike a scenario runner that manufactures results from an expect
// clause, every trace entry here reflects what the sync engine actually
// did: updateProgress really journals a mutation, triggerSync really
// drives the upload/conflict/download phases, and assertions read back
// live store and engine state rather than the scenario's own
// expectations. Scenarios live under testdata/scenarios; golden traces
// under testdata/golden.
package harness
