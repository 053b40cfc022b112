// Package repository implements the Education Repository (C6): the sole
// write entry point for application logic. It is a thin facade over
// internal/store that encapsulates two rules the store itself knows
// nothing about — the atomic progress-upsert-plus-journal-entry pairing,
// and the LWW write path, which it delegates to internal/resolver for
// the decision and then performs itself.
package repository
