package anticheat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gamehub/internal/dependencies/clock"
	"gamehub/internal/hub"
	"gamehub/internal/model"
	"gamehub/internal/storage"
)

// NotifyPolicy selects who receives the Banned notification on a ban
// transition.
type NotifyPolicy string

const (
	// NotifyCaller sends the ban notice to the reporting validator; this is
	// the source system's behavior and the default.
	NotifyCaller NotifyPolicy = "caller"
	// NotifyPlayer routes the ban notice to the banned player's own group
	// instead, so the affected player is the one informed.
	NotifyPlayer NotifyPolicy = "player"
)

// Config holds the ban policy. The thresholds are policy constants, not
// protocol constants; the environment can override all of them.
type Config struct {
	// ProbabilityThreshold bans only strictly above this value
	ProbabilityThreshold float64
	// RequiredConfidence must match the reported confidence exactly
	RequiredConfidence string
	// BanDuration sets unbanAt relative to detection time
	BanDuration time.Duration
	// Notify selects the Banned notification target
	Notify NotifyPolicy
}

// DefaultConfig returns the stock ban policy
func DefaultConfig() Config {
	return Config{
		ProbabilityThreshold: 0.85,
		RequiredConfidence:   "high",
		BanDuration:          30 * 24 * time.Hour,
		Notify:               NotifyCaller,
	}
}

// Service applies the ban policy state machine to detection reports and
// persists their outcomes.
type Service struct {
	store  storage.PlayerStore
	router *hub.Router
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger
}

// New creates a new cheat detection handler. The config is taken as given;
// a zero threshold means every matching-confidence report bans.
func New(store storage.PlayerStore, router *hub.Router, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		router: router,
		clock:  clk,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "anticheat")),
	}
}

// Report ingests a detection event from a validator.
//
// An unknown player is logged and dropped; detection events have no
// originating human client to notify. A movement pattern fact is persisted on
// every call regardless of outcome. The ban transition fires only when
// probability exceeds the threshold strictly AND the confidence matches the
// required level; an already-banned player short-circuits as terminal, so
// repeated high-confidence reports never produce a second ban record.
func (s *Service) Report(ctx context.Context, caller model.ConnectionID, playerID model.PlayerID, probability float64, confidence string, patternVector []byte) error {
	s.logger.Warn("cheat detection reported",
		slog.String("player_id", string(playerID)),
		slog.Float64("probability", probability),
		slog.String("confidence", confidence),
	)

	player, err := s.store.FindByID(ctx, playerID)
	if err != nil {
		s.logger.Error("player not found for cheat detection",
			slog.String("player_id", string(playerID)),
		)
		return err
	}

	now := s.clock.Now()

	if len(patternVector) > model.MaxPatternVectorBytes {
		patternVector = patternVector[:model.MaxPatternVectorBytes]
	}
	pattern := model.MovementPattern{
		PlayerID:         playerID,
		PatternVector:    patternVector,
		CheatProbability: probability,
		DetectedAt:       now,
	}
	if err := s.store.AppendMovementPattern(ctx, pattern); err != nil {
		return err
	}

	if probability > s.cfg.ProbabilityThreshold && confidence == s.cfg.RequiredConfidence {
		s.applyBan(ctx, caller, player, probability, confidence, now)
	}

	s.router.Send(model.GroupDashboard, model.EventCheatAlert, model.CheatAlertPayload{
		PlayerID:         playerID,
		PlayerName:       player.Username,
		CheatProbability: probability,
		Confidence:       confidence,
		Timestamp:        now,
	})

	return nil
}

// applyBan performs the ACTIVE -> BANNED transition. AppendBanRecord is the
// atomic uniqueness gate: when two high-confidence reports race, exactly one
// creates the record and the loser treats the player as already terminal.
func (s *Service) applyBan(ctx context.Context, caller model.ConnectionID, player *model.Player, probability float64, confidence string, now time.Time) {
	if !player.IsActive {
		// Already deactivated; nothing further to apply
		s.logger.Info("detection for inactive player, skipping ban",
			slog.String("player_id", string(player.ID)),
		)
		return
	}

	ban := model.BanRecord{
		PlayerID: player.ID,
		Reason:   fmt.Sprintf("automated detection: %s confidence, %.0f%% probability", confidence, probability*100),
		BannedAt: now,
		UnbanAt:  now.Add(s.cfg.BanDuration),
	}

	if err := s.store.AppendBanRecord(ctx, ban); err != nil {
		if errors.Is(err, model.ErrDuplicateBan) {
			s.logger.Info("player already banned, skipping",
				slog.String("player_id", string(player.ID)),
			)
			return
		}
		s.logger.Error("failed to persist ban",
			slog.String("player_id", string(player.ID)),
			slog.Any("error", err),
		)
		return
	}

	if err := s.store.SetActive(ctx, player.ID, false); err != nil {
		s.logger.Error("failed to deactivate banned player",
			slog.String("player_id", string(player.ID)),
			slog.Any("error", err),
		)
	}

	payload := model.BannedPayload{Reason: ban.Reason, UnbanAt: ban.UnbanAt}
	switch s.cfg.Notify {
	case NotifyPlayer:
		s.router.Send(model.PlayerGroup(player.ID), model.EventBanned, payload)
	default:
		s.router.SendTo(caller, model.EventBanned, payload)
	}

	s.logger.Warn("player banned for cheating",
		slog.String("player_id", string(player.ID)),
		slog.String("username", player.Username),
		slog.Time("unban_at", ban.UnbanAt),
	)
}
