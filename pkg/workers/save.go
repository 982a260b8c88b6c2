package workers

import (
	"context"
	"time"

	gametypes "github.com/hallorn/broadside/pkg/game/types"
	"github.com/hallorn/broadside/pkg/log"
	"github.com/hallorn/broadside/pkg/repositories"
	"github.com/hallorn/broadside/pkg/state"
)

type SaveSnapshotWorker struct {
	repository       repositories.Repository
	saveSnapshotChan <-chan SaveSnapshotRequest
	stateManager     state.StateManager
	interval         time.Duration
}

type NewSaveSnapshotWorkerOptions struct {
	Repository       repositories.Repository
	SaveSnapshotChan <-chan SaveSnapshotRequest
	StateManager     state.StateManager
	Interval         time.Duration
}

type SaveSnapshotRequest struct {
	Timestamp int64
	Snapshot  *gametypes.PlayerSnapshot
}

// NewSaveSnapshotWorker creates a new SaveSnapshotWorker.
// The worker processes save requests from the match loop and
// periodically saves every active match's players to the repository.
func NewSaveSnapshotWorker(opts NewSaveSnapshotWorkerOptions) *SaveSnapshotWorker {
	return &SaveSnapshotWorker{
		repository:       opts.Repository,
		saveSnapshotChan: opts.SaveSnapshotChan,
		stateManager:     opts.StateManager,
		interval:         opts.Interval,
	}
}

func (w *SaveSnapshotWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case saveRequest := <-w.saveSnapshotChan:
			w.saveSnapshot(ctx, saveRequest)
		case t := <-ticker.C:
			matches, err := w.stateManager.ListMatches(ctx)
			if err != nil {
				log.Error("Failed to list matches: %v", err)
				continue
			}
			timestamp := t.UnixMilli()
			for _, match := range matches {
				for _, player := range match.Players {
					w.saveSnapshot(ctx, SaveSnapshotRequest{
						Timestamp: timestamp,
						Snapshot:  player.ToSnapshot(),
					})
				}
			}
		}
	}
}

func (w *SaveSnapshotWorker) saveSnapshot(ctx context.Context, saveRequest SaveSnapshotRequest) {
	err := w.repository.SavePlayerSnapshot(ctx, saveRequest.Timestamp, saveRequest.Snapshot)
	if err != nil {
		log.Error("Failed to save player snapshot: %v", err)
	}
}
