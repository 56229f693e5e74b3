package redis

import (
	"fmt"

	"gamehub/internal/model"
)

// Key prefix for all hub data
const keyPrefix = "gamehub"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player's JSON document
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// emailIndexKey returns the Redis key for the email -> player_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// playersIndexKey returns the Redis key for the LIST of all player ids in
// creation order
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// scoresKey returns the Redis key for a player's append-only score ledger
func scoresKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:scores:%s", keyPrefix, id)
}

// patternsKey returns the Redis key for a player's movement pattern log
func patternsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:patterns:%s", keyPrefix, id)
}

// banKey returns the Redis key holding a player's active ban record
func banKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:ban:%s", keyPrefix, id)
}

// leaderboardKey returns the Redis key for the total-score sorted set
func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}

// activeSetKey returns the Redis key for the SET of active player ids
func activeSetKey() string {
	return fmt.Sprintf("%s:active", keyPrefix)
}
