// Package gateway defines the Remote Gateway contract (C3): the boundary
// between the sync engine and whatever document store lives on the other
// side of the network. This core ships a single implementation,
// MockGateway, an in-memory document map that injects configurable
// latency and failure rate so engine tests can exercise retry and
// conflict behavior deterministically.
package gateway
