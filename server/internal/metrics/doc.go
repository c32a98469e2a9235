// Package metrics holds the Prometheus collectors for tribeboard and the
// /metrics handler. Collectors register on the package-level Registry, not
// the global default.
//
// Summary(g) gathers every family and folds it into name → value totals for
// the JSON status endpoint.
package metrics
