// Package ws streams preview snapshots to editor clients over WebSocket.
//
// Every connection receives a system greeting, the current snapshot, and
// then one snapshot per run or dispatch, whichever client caused it.
// Frames are JSON encoded with sonic.
//
// Message Types (Client → Server):
//   - update: {topic, file, content} replace a script or stylesheet
//   - select: {topic} switch the active topic
//   - dispatch: {node_id, event, value, checked} deliver an event
//   - ping: keep-alive
//
// Message Types (Server → Client):
//   - system: greeting with the client id
//   - snapshot: the latest preview state
//   - error: {code, message} for the requesting client only
//   - pong: reply to ping
//
// Example Usage:
//
//	hub := ws.NewHub(store, controller, logger).WithMetrics(metrics)
//	router.GET("/stream", hub.HandleConnection)
package ws
