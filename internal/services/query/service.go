package query

import (
	"context"
	"log/slog"

	"gamehub/internal/model"
	"gamehub/internal/storage"
)

// Service provides read-only aggregate queries over the player store
type Service struct {
	store  storage.PlayerStore
	logger *slog.Logger
}

// New creates a new query service
func New(store storage.PlayerStore, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With(slog.String("component", "query")),
	}
}

// TopPlayers returns the top n active players ordered by total score
// descending. Ties break deterministically for a fixed snapshot (creation
// order in the memory store). Inactive players are excluded.
func (s *Service) TopPlayers(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	return s.store.TopActiveByScore(ctx, n)
}

// ActiveSessionCount returns the number of players with IsActive set.
//
// Despite the name this counts activation state, not live connections: a
// player who is offline but not banned still counts. The semantic is carried
// over from the source system; correcting it to a live-socket count is a
// deliberate future change, not a bug fix to make here.
func (s *Service) ActiveSessionCount(ctx context.Context) (int, error) {
	return s.store.CountActive(ctx)
}
