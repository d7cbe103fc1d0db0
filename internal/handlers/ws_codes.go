// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room stream.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidRoomError    = 3003 // Room code in the URL is malformed or unknown.
	StreamEndedError    = 3004 // The snapshot feed closed, e.g. the room was removed.
)

// roomSubprotocol is the subprotocol clients must request on the room stream.
const roomSubprotocol = "room"
