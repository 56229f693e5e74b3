package moverelay

import (
	"context"
	"encoding/json"
	"log/slog"

	"gamehub/internal/dependencies/clock"
	"gamehub/internal/hub"
	"gamehub/internal/model"
)

// Service forwards movement events to validators and peers. It holds no
// state and persists nothing: moveData is an opaque payload, bounded only by
// the transport's read limit.
type Service struct {
	router *hub.Router
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new move relay
func New(router *hub.Router, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		router: router,
		clock:  clk,
		logger: logger.With(slog.String("component", "moverelay")),
	}
}

// Relay forwards a movement event to the validators group (tagged with the
// originating connection so a validator can correlate a follow-up decision)
// and to the players group for peer synchronization. It never fails the
// caller: delivery problems are logged inside the router and swallowed, so a
// slow validator cannot block player-to-player sync.
func (s *Service) Relay(ctx context.Context, playerID model.PlayerID, connID model.ConnectionID, moveData json.RawMessage) {
	now := s.clock.Now()

	s.router.Send(model.GroupValidators, model.EventValidateMove, model.ValidateMovePayload{
		PlayerID:     playerID,
		MoveData:     moveData,
		ConnectionID: connID,
		Timestamp:    now,
	})

	s.router.Send(model.GroupPlayers, model.EventPlayerMove, model.PlayerMovePayload{
		PlayerID:  playerID,
		MoveData:  moveData,
		Timestamp: now,
	})
}
