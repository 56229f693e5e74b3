package model

import (
	"encoding/json"
	"time"
)

// EventName identifies a hub event on the wire
type EventName string

// Inbound events (client to hub)
const (
	EventSendScore         EventName = "SendScore"
	EventSendMove          EventName = "SendMove"
	EventCheatDetected     EventName = "CheatDetected"
	EventPing              EventName = "Ping"
	EventGetLeaderboard    EventName = "GetLeaderboard"
	EventGetActiveSessions EventName = "GetActiveSessions"
)

// Outbound events (hub to clients)
const (
	EventScoreUpdate       EventName = "ScoreUpdate"
	EventLeaderboardUpdate EventName = "LeaderboardUpdate"
	EventValidateMove      EventName = "ValidateMove"
	EventPlayerMove        EventName = "PlayerMove"
	EventBanned            EventName = "Banned"
	EventCheatAlert        EventName = "CheatAlert"
	EventPong              EventName = "Pong"
	EventLeaderboard       EventName = "Leaderboard"
	EventActiveSessions    EventName = "ActiveSessions"
	EventError             EventName = "Error"
)

// ScoreUpdatePayload is broadcast to the dashboard group after a committed
// score submission. It carries the session delta alongside the new total.
type ScoreUpdatePayload struct {
	PlayerID   PlayerID  `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	TotalScore int       `json:"totalScore"`
	Timestamp  time.Time `json:"timestamp"`
}

// LeaderboardUpdatePayload is broadcast to the players group. It omits the
// per-session delta to keep the public payload minimal.
type LeaderboardUpdatePayload struct {
	PlayerID   PlayerID `json:"playerId"`
	PlayerName string   `json:"playerName"`
	TotalScore int      `json:"totalScore"`
}

// ValidateMovePayload forwards a movement event to the validators group.
// ConnectionID lets a validator correlate a follow-up decision with the
// originating connection.
type ValidateMovePayload struct {
	PlayerID     PlayerID        `json:"playerId"`
	MoveData     json.RawMessage `json:"moveData"`
	ConnectionID ConnectionID    `json:"connectionId"`
	Timestamp    time.Time       `json:"timestamp"`
}

// PlayerMovePayload forwards a movement event to peers for synchronization
type PlayerMovePayload struct {
	PlayerID  PlayerID        `json:"playerId"`
	MoveData  json.RawMessage `json:"moveData"`
	Timestamp time.Time       `json:"timestamp"`
}

// BannedPayload notifies the configured target of a ban transition
type BannedPayload struct {
	Reason  string    `json:"reason"`
	UnbanAt time.Time `json:"unbanAt"`
}

// CheatAlertPayload notifies the dashboard group of a detection event
type CheatAlertPayload struct {
	PlayerID         PlayerID  `json:"playerId"`
	PlayerName       string    `json:"playerName"`
	CheatProbability float64   `json:"cheatProbability"`
	Confidence       string    `json:"confidence"`
	Timestamp        time.Time `json:"timestamp"`
}

// LeaderboardEntry is one row of a leaderboard query result
type LeaderboardEntry struct {
	PlayerID   PlayerID   `json:"playerId"`
	PlayerName string     `json:"playerName"`
	TotalScore int        `json:"totalScore"`
	Games      int        `json:"games"`
	LastLogin  *time.Time `json:"lastLogin"`
}

// ErrorPayload is sent to the caller when a caller-initiated action fails
type ErrorPayload struct {
	Message string `json:"message"`
}
