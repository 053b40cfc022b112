// Package domain defines the shared record types, the wall clock
// abstraction, and the error taxonomy used by every other package in this
// module: users, lessons, per-user progress, and the outbound sync
// journal that pairs with progress writes.
//
// Nothing in this package talks to SQLite or the network. It is the
// vocabulary the store, resolver, gateway, repository, and engine
// packages all share.
package domain
