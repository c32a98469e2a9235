// Package ws implements the WebSocket hub for tribeboard-server.
//
// Hub manages a set of connected clients and pushes the first leaderboard
// page of the currently selected source to all of them on an interval
// (server.ws_interval, 5s by default).
//
// Message format sent to clients:
//
//	{
//	  "event": "leaderboard",
//	  "data":  {"source": "live", "generated_at": "...", "page": {...}, "teams": [...]}
//	}
//
// When the selected snapshot has disappeared the hub sends
// {"event": "unavailable", "data": {"source": "<id>", ...}} instead.
//
// The upgrader accepts all origins. The endpoint is mounted at /ws/stream.
package ws
