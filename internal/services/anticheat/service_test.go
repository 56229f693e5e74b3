package anticheat

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gamehub/internal/dependencies/mocks"
	"gamehub/internal/hub"
	"gamehub/internal/model"
	"gamehub/internal/storage/memory"
	"gamehub/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store     *memory.Storage
	registry  *hub.Registry
	router    *hub.Router
	clock     *mocks.MockClock
	service   *Service
	dashboard *testutil.RecordingConn
	validator *testutil.RecordingConn
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.setup(DefaultConfig())
}

func (s *ServiceSuite) setup(cfg Config) {
	logger := testutil.NopLogger()
	s.store = memory.New()
	s.registry = hub.NewRegistry(logger)
	s.router = hub.NewRouter(s.registry, logger)
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.store, s.router, s.clock, cfg, logger)
	s.ctx = context.Background()

	s.dashboard = testutil.NewRecordingConn("dash1")
	s.registry.Register(s.dashboard, model.RoleDashboard, "")
	s.router.Join(s.dashboard.ID(), model.GroupDashboard)

	s.validator = testutil.NewRecordingConn("val1")
	s.registry.Register(s.validator, model.RoleValidator, "")
	s.router.Join(s.validator.ID(), model.GroupValidators)
}

func (s *ServiceSuite) savePlayer(id string) {
	err := s.store.SavePlayer(s.ctx, &model.Player{
		ID:        model.PlayerID(id),
		Username:  "user-" + id,
		Email:     id + "@example.com",
		IsActive:  true,
		CreatedAt: s.clock.Now(),
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) isActive(id string) bool {
	player, err := s.store.FindByID(s.ctx, model.PlayerID(id))
	s.Require().NoError(err)
	return player.IsActive
}

func (s *ServiceSuite) TestHighConfidenceAboveThresholdBans() {
	s.savePlayer("p1")

	err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.90, "high", nil)
	s.Require().NoError(err)

	s.False(s.isActive("p1"))

	ban, err := s.store.ActiveBan(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal("automated detection: high confidence, 90% probability", ban.Reason)
	s.Equal(s.clock.Now(), ban.BannedAt)
	s.Equal(s.clock.Now().Add(30*24*time.Hour), ban.UnbanAt)

	// Caller is notified by default
	banned := s.validator.EventsNamed(model.EventBanned)
	s.Require().Len(banned, 1)
	payload := banned[0].Payload.(model.BannedPayload)
	s.Equal(ban.Reason, payload.Reason)
	s.Equal(ban.UnbanAt, payload.UnbanAt)
}

func (s *ServiceSuite) TestThresholdIsStrict() {
	s.savePlayer("p1")

	err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.85, "high", nil)
	s.Require().NoError(err)

	s.True(s.isActive("p1"))
	_, err = s.store.ActiveBan(s.ctx, "p1")
	s.ErrorIs(err, model.ErrBanNotFound)
}

func (s *ServiceSuite) TestJustAboveThresholdBans() {
	s.savePlayer("p1")

	err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.86, "high", nil)
	s.Require().NoError(err)

	s.False(s.isActive("p1"))
}

func (s *ServiceSuite) TestWrongConfidenceDoesNotBan() {
	s.savePlayer("p1")

	err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.99, "medium", nil)
	s.Require().NoError(err)

	s.True(s.isActive("p1"))
	s.Empty(s.validator.EventsNamed(model.EventBanned))
}

func (s *ServiceSuite) TestPatternPersistedRegardlessOfOutcome() {
	s.savePlayer("p1")
	vector := []byte{1, 2, 3}

	err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.10, "low", vector)
	s.Require().NoError(err)
	err = s.service.Report(s.ctx, s.validator.ID(), "p1", 0.95, "high", vector)
	s.Require().NoError(err)

	patterns, err := s.store.MovementPatterns(s.ctx, "p1")
	s.Require().NoError(err)
	s.Len(patterns, 2)
	s.Equal(0.10, patterns[0].CheatProbability)
	s.Equal(0.95, patterns[1].CheatProbability)
}

func (s *ServiceSuite) TestOversizedVectorTruncated() {
	s.savePlayer("p1")
	vector := bytes.Repeat([]byte{7}, model.MaxPatternVectorBytes+100)

	err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.10, "low", vector)
	s.Require().NoError(err)

	patterns, err := s.store.MovementPatterns(s.ctx, "p1")
	s.Require().NoError(err)
	s.Require().Len(patterns, 1)
	s.Len(patterns[0].PatternVector, model.MaxPatternVectorBytes)
}

func (s *ServiceSuite) TestCheatAlertAlwaysReachesDashboard() {
	s.savePlayer("p1")

	err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.10, "low", nil)
	s.Require().NoError(err)
	err = s.service.Report(s.ctx, s.validator.ID(), "p1", 0.95, "high", nil)
	s.Require().NoError(err)

	alerts := s.dashboard.EventsNamed(model.EventCheatAlert)
	s.Require().Len(alerts, 2)
	first := alerts[0].Payload.(model.CheatAlertPayload)
	s.Equal("user-p1", first.PlayerName)
	s.Equal(0.10, first.CheatProbability)
}

func (s *ServiceSuite) TestUnknownPlayerDropped() {
	err := s.service.Report(s.ctx, s.validator.ID(), "ghost", 0.95, "high", nil)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	s.Empty(s.dashboard.Events())
	s.Empty(s.validator.Events())
}

func (s *ServiceSuite) TestRepeatedReportsBanOnce() {
	s.savePlayer("p1")

	for i := 0; i < 3; i++ {
		err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.95, "high", nil)
		s.Require().NoError(err)
	}

	s.Len(s.validator.EventsNamed(model.EventBanned), 1)
	s.Len(s.dashboard.EventsNamed(model.EventCheatAlert), 3)

	patterns, err := s.store.MovementPatterns(s.ctx, "p1")
	s.Require().NoError(err)
	s.Len(patterns, 3)
}

func (s *ServiceSuite) TestConcurrentReportsBanAtMostOnce() {
	s.savePlayer("p1")

	var wg sync.WaitGroup
	wg.Add(8)
	for i := 0; i < 8; i++ {
		go func() {
			defer wg.Done()
			_ = s.service.Report(s.ctx, s.validator.ID(), "p1", 0.95, "high", nil)
		}()
	}
	wg.Wait()

	s.False(s.isActive("p1"))
	s.Len(s.validator.EventsNamed(model.EventBanned), 1)
}

func (s *ServiceSuite) TestNotifyPlayerPolicy() {
	cfg := DefaultConfig()
	cfg.Notify = NotifyPlayer
	s.setup(cfg)
	s.savePlayer("p1")

	playerConn := testutil.NewRecordingConn("play1")
	s.registry.Register(playerConn, model.RolePlayer, "p1")
	s.router.Join(playerConn.ID(), model.PlayerGroup("p1"))

	err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.95, "high", nil)
	s.Require().NoError(err)

	s.Len(playerConn.EventsNamed(model.EventBanned), 1)
	s.Empty(s.validator.EventsNamed(model.EventBanned))
}

func (s *ServiceSuite) TestZeroThresholdIsConfigurable() {
	cfg := Config{
		ProbabilityThreshold: 0,
		RequiredConfidence:   "high",
		BanDuration:          time.Hour,
		Notify:               NotifyCaller,
	}
	s.setup(cfg)
	s.savePlayer("p1")

	// Any positive probability clears a zero threshold
	err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.01, "high", nil)
	s.Require().NoError(err)

	s.False(s.isActive("p1"))
	ban, err := s.store.ActiveBan(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(time.Hour), ban.UnbanAt)
}

func (s *ServiceSuite) TestCustomBanDuration() {
	cfg := DefaultConfig()
	cfg.BanDuration = time.Hour
	s.setup(cfg)
	s.savePlayer("p1")

	err := s.service.Report(s.ctx, s.validator.ID(), "p1", 0.95, "high", nil)
	s.Require().NoError(err)

	ban, err := s.store.ActiveBan(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(time.Hour), ban.UnbanAt)
}
