package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/hallorn/broadside/pkg/clients"
	"github.com/hallorn/broadside/pkg/log"
	"github.com/hallorn/broadside/pkg/messages"
	"github.com/hallorn/broadside/pkg/queue"
)

// WSServer represents a WebSocket server.
type WSServer struct {
	clientManager *clients.ClientManager
	messageQueue  queue.Queue
	port          int
	tls           *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewWSServerOptions struct {
	ClientManager *clients.ClientManager
	MessageQueue  queue.Queue
	Port          int
	TLS           *TLSConfig
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	return &WSServer{
		clientManager: opts.ClientManager,
		messageQueue:  opts.MessageQueue,
		port:          opts.Port,
		tls:           opts.TLS,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Start starts the WebSocket server.
func (s *WSServer) Start(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("Failed to upgrade to WebSocket: %v", err)
			return
		}
		log.Debug("New WebSocket connection from %s", conn.RemoteAddr().String())
		go s.handleWSConnection(ctx, conn)
	})

	addr := fmt.Sprintf(":%d", s.port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		server.Shutdown(ctx)
	}()

	var listenAndServe func() error
	if s.tls != nil {
		log.Info("WebSocket server listening on %s with TLS", addr)
		listenAndServe = func() error {
			return server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("WebSocket server listening on %s", addr)
		listenAndServe = server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("WebSocket server closed")
			return
		}
		log.Error("WebSocket server error: %v", err)
	}
}

// handleWSConnection handles a WebSocket connection.
func (s *WSServer) handleWSConnection(_ context.Context, conn *websocket.Conn) {
	clientID, err := s.clientManager.AddClient(conn)
	if err != nil {
		log.Error("Failed to add client: %v", err)
		conn.Close()
		return
	}

	defer func() {
		s.clientManager.RemoveClient(clientID)
		conn.Close()
	}()

	for {
		message, err := ReadMessageFromWS(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error("Error reading WebSocket message from %s: %v", conn.RemoteAddr().String(), err)
			}
			log.Trace("Connection closed for %s", conn.RemoteAddr().String())
			return
		}

		// stamp the server-assigned client ID so handlers can trust it
		message.ClientID = clientID

		if err := s.messageQueue.Enqueue(message); err != nil {
			log.Error("Failed to enqueue message from client %d: %v", clientID, err)
		}
	}
}

// WriteMessageToClient writes a Message to a connected client
func WriteMessageToClient(client *clients.Client, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	if err := client.WriteMessage(b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection
func ReadMessageFromWS(conn *websocket.Conn) (*messages.Message, error) {
	_, message, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	msg, err := messages.DeserializeMessage(message)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return msg, nil
}
