package score

import (
	"context"
	"log/slog"

	"gamehub/internal/dependencies/clock"
	"gamehub/internal/hub"
	"gamehub/internal/model"
	"gamehub/internal/storage"
)

// Service validates and commits score submissions, then fans the result out
// to the dashboard and player groups.
type Service struct {
	store  storage.PlayerStore
	router *hub.Router
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new score ingestion service
func New(store storage.PlayerStore, router *hub.Router, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		router: router,
		clock:  clk,
		logger: logger.With(slog.String("component", "score")),
	}
}

// Result reports the committed state after a successful submission
type Result struct {
	PlayerID   model.PlayerID
	TotalScore int
}

// Submit commits a score submission for a player.
//
// The submission is dropped with model.ErrPlayerNotFound when the player does
// not exist; no record is written and no broadcast occurs. On success the
// score record and the aggregate total are committed as one atomic store
// write, and two broadcasts go out: ScoreUpdate to the dashboard group (with
// the session delta) and LeaderboardUpdate to the players group (totals
// only). A failed commit leaves neither the record nor the total behind.
//
// The score may be any integer, including zero or negative penalties;
// validating legitimate magnitudes is a game-rules concern above this layer.
func (s *Service) Submit(ctx context.Context, playerID model.PlayerID, playerName string, scoreDelta int) (*Result, error) {
	if _, err := s.store.FindByID(ctx, playerID); err != nil {
		s.logger.Warn("score submission for unknown player",
			slog.String("player_id", string(playerID)),
		)
		return nil, err
	}

	now := s.clock.Now()
	record := model.ScoreRecord{
		PlayerID:   playerID,
		Score:      scoreDelta,
		RecordedAt: now,
	}
	player, err := s.store.CommitScore(ctx, record)
	if err != nil {
		return nil, err
	}

	s.router.Send(model.GroupDashboard, model.EventScoreUpdate, model.ScoreUpdatePayload{
		PlayerID:   playerID,
		PlayerName: playerName,
		Score:      scoreDelta,
		TotalScore: player.TotalScore,
		Timestamp:  now,
	})

	s.router.Send(model.GroupPlayers, model.EventLeaderboardUpdate, model.LeaderboardUpdatePayload{
		PlayerID:   playerID,
		PlayerName: playerName,
		TotalScore: player.TotalScore,
	})

	s.logger.Info("score committed",
		slog.String("player_id", string(playerID)),
		slog.Int("score", scoreDelta),
		slog.Int("total_score", player.TotalScore),
	)

	return &Result{PlayerID: playerID, TotalScore: player.TotalScore}, nil
}
