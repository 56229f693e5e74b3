package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a game participant account.
// TotalScore is the running aggregate reconciled from the append-only score
// ledger; it is mutated only through PlayerStore.CommitScore. IsActive is
// cleared by the anti-cheat ban transition (manual deactivation without a ban
// record is also allowed, but a ban record always implies inactive).
type Player struct {
	ID           PlayerID
	Username     string // unique
	Email        string // unique
	PasswordHash string // bcrypt hash, never sent to clients
	TotalScore   int
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}
