package clients

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	// ClientIDMaxRetries represents the maximum number of retries when generating a unique ID
	ClientIDMaxRetries = 1024
	// ClientEventChannelSize is the buffer size of the client event channel
	ClientEventChannelSize = 256
)

// Client represents a connected client
type Client struct {
	ID   uint32
	Conn *websocket.Conn
	// writeLock serializes writes to the connection
	writeLock sync.Mutex
}

// WriteMessage writes a binary message to the client's connection.
// Safe for concurrent use.
func (c *Client) WriteMessage(data []byte) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.Conn.WriteMessage(websocket.BinaryMessage, data)
}

type ClientEventType int

const (
	ClientEventTypeConnect ClientEventType = iota
	ClientEventTypeDisconnect
)

type ClientEvent struct {
	Type     ClientEventType
	ClientID uint32
}

// ClientManager manages connected clients
type ClientManager struct {
	clients     map[uint32]*Client
	clientsLock sync.RWMutex
	nextID      uint32
	eventChan   chan ClientEvent
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:   make(map[uint32]*Client),
		nextID:    1,
		eventChan: make(chan ClientEvent, ClientEventChannelSize),
	}
}

// GetClientEventChan returns the channel client connect and disconnect
// events are published on.
func (cm *ClientManager) GetClientEventChan() <-chan ClientEvent {
	return cm.eventChan
}

// GetClients returns a list of all connected clients
func (cm *ClientManager) GetClients() []*Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		clients = append(clients, client)
	}
	return clients
}

// AddClient adds a new client to the manager and returns its ID
func (cm *ClientManager) AddClient(conn *websocket.Conn) (uint32, error) {
	cm.clientsLock.Lock()
	clientID, err := cm.generateUniqueID(ClientIDMaxRetries)
	if err != nil {
		cm.clientsLock.Unlock()
		return 0, fmt.Errorf("failed to generate a unique ID: %v", err)
	}
	client := &Client{
		ID:   clientID,
		Conn: conn,
	}
	cm.clients[clientID] = client
	cm.clientsLock.Unlock()

	cm.eventChan <- ClientEvent{Type: ClientEventTypeConnect, ClientID: clientID}
	return clientID, nil
}

// RemoveClient removes a client from the manager.
func (cm *ClientManager) RemoveClient(clientID uint32) {
	cm.clientsLock.Lock()
	_, exists := cm.clients[clientID]
	if exists {
		delete(cm.clients, clientID)
	}
	cm.clientsLock.Unlock()

	if exists {
		cm.eventChan <- ClientEvent{Type: ClientEventTypeDisconnect, ClientID: clientID}
	}
}

// GetClientByID retrieves a client by its ID
func (cm *ClientManager) GetClientByID(clientID uint32) *Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	return cm.clients[clientID]
}

func (cm *ClientManager) Exists(clientID uint32) bool {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	_, ok := cm.clients[clientID]
	return ok
}

// generateUniqueID generates a unique client ID with a maximum number of retries.
// It reads from the clients map, so the caller must hold the lock.
func (cm *ClientManager) generateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := cm.nextID
		cm.nextID++
		if _, ok := cm.clients[id]; !ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}
