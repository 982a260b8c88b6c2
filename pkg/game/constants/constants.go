package constants

const (

	// BoardWidth is the number of columns on a player's board
	BoardWidth int = 10
	// BoardHeight is the number of rows on a player's board
	BoardHeight int = 10

	// ScoreHit is the score awarded for landing a hit
	ScoreHit int = 10
	// ScoreDestroyed is the bonus awarded for sinking a ship
	ScoreDestroyed int = 30
	// ScoreStreakBonus is the bonus awarded per consecutive hit in a streak
	ScoreStreakBonus int = 5

	// PlacementMaxAttempts is the maximum number of attempts when generating
	// a random placement for a single ship
	PlacementMaxAttempts int = 1024

	// MatchPlayerCount is the number of players in a match
	MatchPlayerCount int = 2
)
