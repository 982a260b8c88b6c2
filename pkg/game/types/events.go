package types

// ConnectClientEvent is enqueued when a client connects to the server.
type ConnectClientEvent struct {
	ClientID uint32
}

// DisconnectClientEvent is enqueued when a client's connection drops.
// The match loop saves and removes the player it was mapped to.
type DisconnectClientEvent struct {
	ClientID uint32
}
