// Package engine implements the Sync Engine (C4): a connectivity-gated,
// single-flight, three-phase (upload, conflict injection, download) sync
// cycle over a repository.Repository and a gateway.Gateway. Structurally
// grounded on the teacher's single-writer engine loop — an in-progress
// flag guarding concurrent entry, a private FIFO queue for externally
// appended work, and a broadcast status stream — repurposed from "one
// event-processing loop" to "at most one sync cycle at a time."
package engine
