package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	gametypes "github.com/hallorn/broadside/pkg/game/types"
	"github.com/hallorn/broadside/pkg/log"
	"github.com/hallorn/broadside/pkg/repositories"
)

func HandleListMatchPlayers(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := mux.Vars(r)["matchID"]
		players, err := repository.ListMatchPlayers(r.Context(), matchID)
		if err != nil {
			log.Error("failed to list match players: %v", err)
			http.Error(w, "Failed to list match players", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("failed to encode players: %v", err)
			http.Error(w, "Failed to encode players", http.StatusInternalServerError)
			return
		}
	}
}

// HandleGetPlayerSnapshot returns a player's full snapshot. This is the
// owner-facing representation and must only be served to the player it
// belongs to.
func HandleGetPlayerSnapshot(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		snapshot, err := repository.LoadPlayerSnapshot(r.Context(), vars["matchID"], vars["playerUUID"])
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Player not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load player snapshot: %v", err)
			http.Error(w, "Failed to load player snapshot", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil {
			log.Error("failed to encode snapshot: %v", err)
			http.Error(w, "Failed to encode snapshot", http.StatusInternalServerError)
			return
		}
	}
}

// HandleGetOpponentView returns the redacted projection of a player's
// state, safe to show to the opposing player: only sunk ships appear and
// prediction metadata is stripped from the attack history.
func HandleGetOpponentView(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		snapshot, err := repository.LoadPlayerSnapshot(r.Context(), vars["matchID"], vars["playerUUID"])
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Player not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load player snapshot: %v", err)
			http.Error(w, "Failed to load player snapshot", http.StatusInternalServerError)
			return
		}

		player, err := gametypes.NewPlayerStateFromSnapshot(snapshot)
		if err != nil {
			log.Error("failed to rehydrate player: %v", err)
			http.Error(w, "Failed to rehydrate player", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(player.ToOpponentView()); err != nil {
			log.Error("failed to encode opponent view: %v", err)
			http.Error(w, "Failed to encode opponent view", http.StatusInternalServerError)
			return
		}
	}
}
