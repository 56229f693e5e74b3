package storage

import (
	"context"
	"time"

	"gamehub/internal/model"
)

// PlayerStore defines the interface for persistent player state.
//
// CommitScore and AppendBanRecord carry the store's two consistency
// guarantees: a score commit writes the ledger record and the aggregate
// total as one atomic unit (serialized per player, so the total always
// equals the sum of committed records), and at most one active ban record
// can exist per player (a second append fails with model.ErrDuplicateBan).
type PlayerStore interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	FindByID(ctx context.Context, id model.PlayerID) (*model.Player, error)
	FindByUsername(ctx context.Context, username string) (*model.Player, error)
	FindByEmail(ctx context.Context, email string) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	CommitScore(ctx context.Context, record model.ScoreRecord) (*model.Player, error)
	SetActive(ctx context.Context, id model.PlayerID, active bool) error
	SetLastLogin(ctx context.Context, id model.PlayerID, at time.Time) error

	// Append-only facts
	AppendMovementPattern(ctx context.Context, pattern model.MovementPattern) error
	AppendBanRecord(ctx context.Context, ban model.BanRecord) error
	ScoreRecords(ctx context.Context, id model.PlayerID) ([]model.ScoreRecord, error)
	MovementPatterns(ctx context.Context, id model.PlayerID) ([]model.MovementPattern, error)
	ActiveBan(ctx context.Context, id model.PlayerID) (*model.BanRecord, error)

	// Aggregate queries
	TopActiveByScore(ctx context.Context, n int) ([]model.LeaderboardEntry, error)
	CountActive(ctx context.Context) (int, error)
}
