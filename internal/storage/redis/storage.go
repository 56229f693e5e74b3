package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"gamehub/internal/model"
	"gamehub/internal/storage"
)

// Storage is a Redis-backed implementation of the player store.
//
// Player documents are stored as JSON. The total-score sorted set mirrors
// every increment so leaderboard reads never scan the full keyspace, and the
// ban key is written with SETNX so the at-most-one-active-ban invariant is a
// single atomic operation.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.PlayerStore = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	exists, err := s.client.Exists(ctx, playerKey(player.ID)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.ID), data, 0)
	pipe.Set(ctx, usernameIndexKey(player.Username), string(player.ID), 0)
	pipe.Set(ctx, emailIndexKey(player.Email), string(player.ID), 0)
	pipe.ZAdd(ctx, leaderboardKey(), redis.Z{Score: float64(player.TotalScore), Member: string(player.ID)})
	if exists == 0 {
		pipe.RPush(ctx, playersIndexKey(), string(player.ID))
	}
	if player.IsActive {
		pipe.SAdd(ctx, activeSetKey(), string(player.ID))
	} else {
		pipe.SRem(ctx, activeSetKey(), string(player.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) FindByID(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) FindByUsername(ctx context.Context, username string) (*model.Player, error) {
	return s.findByIndex(ctx, usernameIndexKey(username))
}

func (s *Storage) FindByEmail(ctx context.Context, email string) (*model.Player, error) {
	return s.findByIndex(ctx, emailIndexKey(email))
}

func (s *Storage) findByIndex(ctx context.Context, indexKey string) (*model.Player, error) {
	idStr, err := s.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.FindByID(ctx, model.PlayerID(idStr))
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.LRange(ctx, playersIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		player, err := s.FindByID(ctx, model.PlayerID(id))
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

// CommitScore applies the record's delta under an optimistic WATCH
// transaction, so two concurrent submissions for the same player never lose
// an update. The ledger push, the player document and the leaderboard sorted
// set go through a single MULTI/EXEC, so a conflict or transport failure
// leaves all three untouched and the total always matches the ledger.
func (s *Storage) CommitScore(ctx context.Context, record model.ScoreRecord) (*model.Player, error) {
	id := record.PlayerID
	recordData, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	var updated *model.Player

	apply := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, playerKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPlayerNotFound
			}
			return err
		}

		var player model.Player
		if err := json.Unmarshal(data, &player); err != nil {
			return err
		}
		player.TotalScore += record.Score

		next, err := json.Marshal(&player)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey(id), next, 0)
			pipe.ZIncrBy(ctx, leaderboardKey(), float64(record.Score), string(id))
			pipe.RPush(ctx, scoresKey(id), recordData)
			return nil
		})
		if err != nil {
			return err
		}

		updated = &player
		return nil
	}

	for i := 0; i < s.cfg.MaxIncrementRetries; i++ {
		err := s.client.Watch(ctx, apply, playerKey(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, redis.TxFailedErr
}

func (s *Storage) SetActive(ctx context.Context, id model.PlayerID, active bool) error {
	return s.updatePlayer(ctx, id, func(player *model.Player, pipe redis.Pipeliner) {
		player.IsActive = active
		if active {
			pipe.SAdd(ctx, activeSetKey(), string(id))
		} else {
			pipe.SRem(ctx, activeSetKey(), string(id))
		}
	})
}

func (s *Storage) SetLastLogin(ctx context.Context, id model.PlayerID, at time.Time) error {
	return s.updatePlayer(ctx, id, func(player *model.Player, pipe redis.Pipeliner) {
		player.LastLoginAt = &at
	})
}

// updatePlayer rewrites a player document under WATCH, retrying on conflict
func (s *Storage) updatePlayer(ctx context.Context, id model.PlayerID, mutate func(*model.Player, redis.Pipeliner)) error {
	apply := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, playerKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPlayerNotFound
			}
			return err
		}

		var player model.Player
		if err := json.Unmarshal(data, &player); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			mutate(&player, pipe)
			next, err := json.Marshal(&player)
			if err != nil {
				return err
			}
			pipe.Set(ctx, playerKey(id), next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.cfg.MaxIncrementRetries; i++ {
		err := s.client.Watch(ctx, apply, playerKey(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

// Append-only facts

func (s *Storage) AppendMovementPattern(ctx context.Context, pattern model.MovementPattern) error {
	if err := s.requirePlayer(ctx, pattern.PlayerID); err != nil {
		return err
	}
	data, err := json.Marshal(pattern)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, patternsKey(pattern.PlayerID), data).Err()
}

// AppendBanRecord writes the ban with SETNX; a lost race or an existing
// active ban both surface as model.ErrDuplicateBan.
func (s *Storage) AppendBanRecord(ctx context.Context, ban model.BanRecord) error {
	if err := s.requirePlayer(ctx, ban.PlayerID); err != nil {
		return err
	}
	data, err := json.Marshal(ban)
	if err != nil {
		return err
	}
	set, err := s.client.SetNX(ctx, banKey(ban.PlayerID), data, 0).Result()
	if err != nil {
		return err
	}
	if !set {
		return model.ErrDuplicateBan
	}
	return nil
}

func (s *Storage) ScoreRecords(ctx context.Context, id model.PlayerID) ([]model.ScoreRecord, error) {
	items, err := s.client.LRange(ctx, scoresKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]model.ScoreRecord, 0, len(items))
	for _, item := range items {
		var record model.ScoreRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Storage) MovementPatterns(ctx context.Context, id model.PlayerID) ([]model.MovementPattern, error) {
	items, err := s.client.LRange(ctx, patternsKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	patterns := make([]model.MovementPattern, 0, len(items))
	for _, item := range items {
		var pattern model.MovementPattern
		if err := json.Unmarshal([]byte(item), &pattern); err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

func (s *Storage) ActiveBan(ctx context.Context, id model.PlayerID) (*model.BanRecord, error) {
	data, err := s.client.Get(ctx, banKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrBanNotFound
		}
		return nil, err
	}

	var ban model.BanRecord
	if err := json.Unmarshal(data, &ban); err != nil {
		return nil, err
	}
	return &ban, nil
}

func (s *Storage) requirePlayer(ctx context.Context, id model.PlayerID) error {
	exists, err := s.client.Exists(ctx, playerKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

// Aggregate queries

// TopActiveByScore walks the leaderboard sorted set from the top, skipping
// inactive players. Ties follow the sorted set's member ordering, which is
// deterministic for a fixed snapshot.
func (s *Storage) TopActiveByScore(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		return []model.LeaderboardEntry{}, nil
	}

	ids, err := s.client.ZRevRange(ctx, leaderboardKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, n)
	for _, id := range ids {
		if len(entries) >= n {
			break
		}
		player, err := s.FindByID(ctx, model.PlayerID(id))
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !player.IsActive {
			continue
		}
		games, err := s.client.LLen(ctx, scoresKey(player.ID)).Result()
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.LeaderboardEntry{
			PlayerID:   player.ID,
			PlayerName: player.Username,
			TotalScore: player.TotalScore,
			Games:      int(games),
			LastLogin:  player.LastLoginAt,
		})
	}
	return entries, nil
}

func (s *Storage) CountActive(ctx context.Context) (int, error) {
	count, err := s.client.SCard(ctx, activeSetKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
