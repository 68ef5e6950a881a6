package types

import "strings"

// TransportMode defines the RPC connection type.
type TransportMode int

const (
	WebSocketMode TransportMode = iota
	HTTPMode
)

// String converts TransportMode to its string representation.
func (m TransportMode) String() string {
	if m == WebSocketMode {
		return "websocket"
	}
	return "http"
}

// GetTransportMode returns the mode implied by an RPC URL scheme. The
// concrete client is selected at dial time from the URL alone, so every
// call site stays transport-agnostic.
func GetTransportMode(rpcURL string) TransportMode {
	if strings.HasPrefix(rpcURL, "wss://") || strings.HasPrefix(rpcURL, "ws://") {
		return WebSocketMode
	}
	return HTTPMode
}
