// Package api implements the HTTP REST API for tribeboard-server.
//
// New(deps) returns an http.Handler that serves:
//
//	GET    /api/v1/health                  liveness plus the active source
//	GET    /api/v1/leaderboard             filtered, sorted, paginated view
//	GET    /api/v1/tribes/{tribe}          tribe stats plus its page
//	GET    /api/v1/tribes/{tribe}/vote-off players below the threshold
//	GET    /api/v1/teams                   per-tribe averages
//	GET    /api/v1/snapshots               registered snapshots, newest first
//	POST   /api/v1/snapshots               capture one now (rate limited)
//	DELETE /api/v1/snapshots/{id}          delete from memory and disk
//	GET    /api/v1/source                  active source and the options
//	PUT    /api/v1/source?id=              switch source
//	GET    /api/v1/status                  cache age, registry size, counters
//	GET    /metrics                        Prometheus exposition
//
// Leaderboard query parameters: tribe, sort_by (highScore, attempts, tribe,
// address, playerId, highScoreAchievedAt), order (asc|desc), page.
//
// All JSON endpoints respond with Content-Type: application/json and an
// {"error": "..."} body on failure. Every response carries X-Request-ID.
package api
