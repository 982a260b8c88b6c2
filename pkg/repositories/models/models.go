package models

// Player is a summary row for one persisted player.
type Player struct {
	UUID      string `json:"uuid"`
	MatchID   string `json:"match"`
	Username  string `json:"username"`
	IsAI      bool   `json:"isAi"`
	Score     int    `json:"score"`
	UpdatedAt int64  `json:"updatedAt"`
}
