package roster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"gamehub/internal/dependencies/mocks"
	"gamehub/internal/model"
	"gamehub/internal/storage/memory"
	"gamehub/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store   *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.store, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestCreate() {
	player, err := s.service.Create(s.ctx, "alice", "alice@example.com", "s3cret")
	s.Require().NoError(err)

	s.NotEmpty(player.ID)
	s.Equal("alice", player.Username)
	s.Equal("alice@example.com", player.Email)
	s.Equal(0, player.TotalScore)
	s.True(player.IsActive)
	s.Equal(s.clock.Now(), player.CreatedAt)
	s.Nil(player.LastLoginAt)

	// Password is stored hashed, never plain
	s.NotEqual("s3cret", player.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte("s3cret")))
}

func (s *ServiceSuite) TestCreateDuplicateUsername() {
	_, err := s.service.Create(s.ctx, "alice", "alice@example.com", "pw")
	s.Require().NoError(err)

	_, err = s.service.Create(s.ctx, "alice", "other@example.com", "pw")
	s.ErrorIs(err, model.ErrUsernameExists)
}

func (s *ServiceSuite) TestCreateDuplicateEmail() {
	_, err := s.service.Create(s.ctx, "alice", "alice@example.com", "pw")
	s.Require().NoError(err)

	_, err = s.service.Create(s.ctx, "bob", "alice@example.com", "pw")
	s.ErrorIs(err, model.ErrEmailExists)
}

func (s *ServiceSuite) TestListInCreationOrder() {
	first, err := s.service.Create(s.ctx, "alice", "alice@example.com", "pw")
	s.Require().NoError(err)
	second, err := s.service.Create(s.ctx, "bob", "bob@example.com", "pw")
	s.Require().NoError(err)

	players, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(first.ID, players[0].ID)
	s.Equal(second.ID, players[1].ID)
}

func (s *ServiceSuite) TestRecordLogin() {
	player, err := s.service.Create(s.ctx, "alice", "alice@example.com", "pw")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	s.service.RecordLogin(s.ctx, player.ID)

	found, err := s.store.FindByID(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.LastLoginAt)
	s.Equal(s.clock.Now(), *found.LastLoginAt)
}

func (s *ServiceSuite) TestRecordLoginUnknownOrEmptyIsNoop() {
	s.NotPanics(func() {
		s.service.RecordLogin(s.ctx, "")
		s.service.RecordLogin(s.ctx, "ghost")
	})
}
