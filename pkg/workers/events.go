package workers

import (
	"github.com/hallorn/broadside/pkg/clients"
	gametypes "github.com/hallorn/broadside/pkg/game/types"
	"github.com/hallorn/broadside/pkg/log"
	"github.com/hallorn/broadside/pkg/queue"
)

type ClientEventWorker struct {
	clientManager        *clients.ClientManager
	connectionEventQueue queue.Queue
}

type NewClientEventWorkerOptions struct {
	ClientManager        *clients.ClientManager
	ConnectionEventQueue queue.Queue
}

// NewClientEventWorker creates a new ClientEventWorker.
// The worker processes client events like connect and disconnect
// and writes connection events to a queue for the match loop to process.
func NewClientEventWorker(opts NewClientEventWorkerOptions) *ClientEventWorker {
	return &ClientEventWorker{
		clientManager:        opts.ClientManager,
		connectionEventQueue: opts.ConnectionEventQueue,
	}
}

func (w *ClientEventWorker) Start() {
	for event := range w.clientManager.GetClientEventChan() {
		switch event.Type {
		case clients.ClientEventTypeConnect:
			w.enqueue(&gametypes.ConnectClientEvent{ClientID: event.ClientID})
		case clients.ClientEventTypeDisconnect:
			w.enqueue(&gametypes.DisconnectClientEvent{ClientID: event.ClientID})
		default:
			log.Error("unknown client event type: %v", event.Type)
		}
	}
}

func (w *ClientEventWorker) enqueue(event interface{}) {
	if err := w.connectionEventQueue.Enqueue(event); err != nil {
		log.Error("Failed to enqueue connection event: %v", err)
	}
}
