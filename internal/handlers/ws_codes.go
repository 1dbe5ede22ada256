// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the gateway, more specific than the
// standard set.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
)
