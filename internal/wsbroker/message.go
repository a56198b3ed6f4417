package wsbroker

import "github.com/pezzottify/catalog-server/internal/sync"

// Message types exchanged over the sync WebSocket.
const (
	TypeHello = "hello"
	TypeSync  = "sync"
	TypePing  = "ping"
	TypePong  = "pong"
)

// ServerMessage is either of the two JSON shapes the server sends: hello
// and sync. The heartbeat is a WebSocket control ping frame written by
// writePump; no ServerMessage of TypePing is sent, and a JSON pong from the
// client does not extend the read deadline. Fields are omitempty so each
// wire message carries only what its type needs.
type ServerMessage struct {
	Type       string           `json:"type"`
	CurrentSeq int64            `json:"current_seq,omitempty"`
	Event      *sync.StoredEvent `json:"event,omitempty"`
}

// ClientMessage is anything the client may send back; today only pong.
type ClientMessage struct {
	Type string `json:"type"`
}
