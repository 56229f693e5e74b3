package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"gamehub/internal/model"
	"gamehub/internal/storage"
)

// Storage is an in-memory implementation of the player store.
//
// A single mutex guards all state, so every read-modify-write operation
// (CommitScore, AppendBanRecord) is a critical section and per-player
// serialization holds for free.
type Storage struct {
	mu sync.RWMutex

	players       map[model.PlayerID]*model.Player
	usernameIndex map[string]model.PlayerID
	emailIndex    map[string]model.PlayerID
	scores        map[model.PlayerID][]model.ScoreRecord
	patterns      map[model.PlayerID][]model.MovementPattern
	bans          map[model.PlayerID]*model.BanRecord
	insertOrder   []model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:       make(map[model.PlayerID]*model.Player),
		usernameIndex: make(map[string]model.PlayerID),
		emailIndex:    make(map[string]model.PlayerID),
		scores:        make(map[model.PlayerID][]model.ScoreRecord),
		patterns:      make(map[model.PlayerID][]model.MovementPattern),
		bans:          make(map[model.PlayerID]*model.BanRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.PlayerStore = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; !ok {
		s.insertOrder = append(s.insertOrder, player.ID)
	}
	cp := *player
	s.players[player.ID] = &cp
	s.usernameIndex[player.Username] = player.ID
	s.emailIndex[player.Email] = player.ID
	return nil
}

func (s *Storage) FindByID(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(id)
}

// findLocked must be called with at least a read lock held
func (s *Storage) findLocked(id model.PlayerID) (*model.Player, error) {
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) FindByUsername(ctx context.Context, username string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.findLocked(id)
}

func (s *Storage) FindByEmail(ctx context.Context, email string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.findLocked(id)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, id := range s.insertOrder {
		if player, ok := s.players[id]; ok {
			cp := *player
			players = append(players, &cp)
		}
	}
	return players, nil
}

// CommitScore appends the score record and applies its delta to the total
// inside one critical section, so the ledger and the aggregate never diverge.
func (s *Storage) CommitScore(ctx context.Context, record model.ScoreRecord) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[record.PlayerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	s.scores[record.PlayerID] = append(s.scores[record.PlayerID], record)
	player.TotalScore += record.Score
	cp := *player
	return &cp, nil
}

func (s *Storage) SetActive(ctx context.Context, id model.PlayerID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	player.IsActive = active
	return nil
}

func (s *Storage) SetLastLogin(ctx context.Context, id model.PlayerID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	player.LastLoginAt = &at
	return nil
}

// Append-only facts

func (s *Storage) AppendMovementPattern(ctx context.Context, pattern model.MovementPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[pattern.PlayerID]; !ok {
		return model.ErrPlayerNotFound
	}
	s.patterns[pattern.PlayerID] = append(s.patterns[pattern.PlayerID], pattern)
	return nil
}

func (s *Storage) AppendBanRecord(ctx context.Context, ban model.BanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[ban.PlayerID]; !ok {
		return model.ErrPlayerNotFound
	}
	if _, ok := s.bans[ban.PlayerID]; ok {
		return model.ErrDuplicateBan
	}
	cp := ban
	s.bans[ban.PlayerID] = &cp
	return nil
}

func (s *Storage) ScoreRecords(ctx context.Context, id model.PlayerID) ([]model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]model.ScoreRecord, len(s.scores[id]))
	copy(records, s.scores[id])
	return records, nil
}

func (s *Storage) MovementPatterns(ctx context.Context, id model.PlayerID) ([]model.MovementPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patterns := make([]model.MovementPattern, len(s.patterns[id]))
	copy(patterns, s.patterns[id])
	return patterns, nil
}

func (s *Storage) ActiveBan(ctx context.Context, id model.PlayerID) (*model.BanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ban, ok := s.bans[id]
	if !ok {
		return nil, model.ErrBanNotFound
	}
	cp := *ban
	return &cp, nil
}

// Aggregate queries

// TopActiveByScore returns active players ordered by total score descending.
// Ties break by creation order then ID, so results are deterministic for a
// fixed snapshot.
func (s *Storage) TopActiveByScore(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		return []model.LeaderboardEntry{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]*model.Player, 0, len(s.players))
	for _, id := range s.insertOrder {
		if player, ok := s.players[id]; ok && player.IsActive {
			active = append(active, player)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].TotalScore != active[j].TotalScore {
			return active[i].TotalScore > active[j].TotalScore
		}
		if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].CreatedAt.Before(active[j].CreatedAt)
		}
		return active[i].ID < active[j].ID
	})

	if n < len(active) {
		active = active[:n]
	}

	entries := make([]model.LeaderboardEntry, 0, len(active))
	for _, player := range active {
		entries = append(entries, model.LeaderboardEntry{
			PlayerID:   player.ID,
			PlayerName: player.Username,
			TotalScore: player.TotalScore,
			Games:      len(s.scores[player.ID]),
			LastLogin:  player.LastLoginAt,
		})
	}
	return entries, nil
}

func (s *Storage) CountActive(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, player := range s.players {
		if player.IsActive {
			count++
		}
	}
	return count, nil
}
