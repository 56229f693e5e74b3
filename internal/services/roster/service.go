package roster

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gamehub/internal/dependencies/clock"
	"gamehub/internal/model"
	"gamehub/internal/storage"
)

// Service manages player accounts: creation, listing, and login bookkeeping.
// Score and ban state belong to the score and anticheat services; this one
// only touches identity fields.
type Service struct {
	store  storage.PlayerStore
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new roster service
func New(store storage.PlayerStore, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		clock:  clk,
		logger: logger.With(slog.String("component", "roster")),
	}
}

// Create registers a new player account with a unique username and email.
// The password is stored only as a bcrypt hash and new accounts start active
// with a zero score.
func (s *Service) Create(ctx context.Context, username, email, password string) (*model.Player, error) {
	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return nil, model.ErrUsernameExists
	} else if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, model.ErrEmailExists
	} else if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	player := &model.Player{
		ID:           model.PlayerID(uuid.NewString()),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		TotalScore:   0,
		IsActive:     true,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.store.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player account created",
		slog.String("player_id", string(player.ID)),
		slog.String("username", username),
	)
	return player, nil
}

// List returns all player accounts in creation order
func (s *Service) List(ctx context.Context) ([]*model.Player, error) {
	return s.store.ListPlayers(ctx)
}

// RecordLogin stamps a player's last login time. Called by the transport
// when a player connection completes its handshake; unknown players are a
// no-op since anonymous connections are allowed.
func (s *Service) RecordLogin(ctx context.Context, id model.PlayerID) {
	if id == "" {
		return
	}
	if err := s.store.SetLastLogin(ctx, id, s.clock.Now()); err != nil {
		if !errors.Is(err, model.ErrPlayerNotFound) {
			s.logger.Warn("failed to record login",
				slog.String("player_id", string(id)),
				slog.Any("error", err),
			)
		}
	}
}
