// Package resolver implements the LWW Resolver (C5): a pure decision
// function over a local Progress row and a validated remote document,
// with no side effects and no storage access. The repository package
// performs the write the decision calls for.
package resolver
