package state

import (
	"context"
	"fmt"
	"sync"

	gametypes "github.com/hallorn/broadside/pkg/game/types"
)

type InMemoryStateManager struct {
	lock    sync.RWMutex
	matches map[string]*gametypes.MatchState
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		matches: make(map[string]*gametypes.MatchState),
	}
}

func (m *InMemoryStateManager) GetMatch(ctx context.Context, matchID string) (*gametypes.MatchState, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	match, ok := m.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("match %s not found", matchID)
	}
	return match.Copy(), nil
}

func (m *InMemoryStateManager) SetMatch(ctx context.Context, match *gametypes.MatchState) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if match == nil {
		return fmt.Errorf("match state is nil")
	}

	m.matches[match.ID] = match.Copy()
	return nil
}

func (m *InMemoryStateManager) RemoveMatch(ctx context.Context, matchID string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.matches, matchID)
	return nil
}

func (m *InMemoryStateManager) ListMatches(ctx context.Context) ([]*gametypes.MatchState, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	matches := make([]*gametypes.MatchState, 0, len(m.matches))
	for _, match := range m.matches {
		matches = append(matches, match.Copy())
	}
	return matches, nil
}
