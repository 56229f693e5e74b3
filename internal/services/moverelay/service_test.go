package moverelay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gamehub/internal/dependencies/mocks"
	"gamehub/internal/hub"
	"gamehub/internal/model"
	"gamehub/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	registry  *hub.Registry
	router    *hub.Router
	clock     *mocks.MockClock
	service   *Service
	validator *testutil.RecordingConn
	peer      *testutil.RecordingConn
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.registry = hub.NewRegistry(logger)
	s.router = hub.NewRouter(s.registry, logger)
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.router, s.clock, logger)
	s.ctx = context.Background()

	s.validator = testutil.NewRecordingConn("val1")
	s.registry.Register(s.validator, model.RoleValidator, "")
	s.router.Join(s.validator.ID(), model.GroupValidators)

	s.peer = testutil.NewRecordingConn("peer1")
	s.registry.Register(s.peer, model.RolePlayer, "p2")
	s.router.Join(s.peer.ID(), model.GroupPlayers)
}

func (s *ServiceSuite) TestRelayFansOutToBothGroups() {
	move := json.RawMessage(`{"x":1,"y":2}`)

	s.service.Relay(s.ctx, "p1", "conn1", move)

	validate := s.validator.EventsNamed(model.EventValidateMove)
	s.Require().Len(validate, 1)
	vp := validate[0].Payload.(model.ValidateMovePayload)
	s.Equal(model.PlayerID("p1"), vp.PlayerID)
	s.Equal(model.ConnectionID("conn1"), vp.ConnectionID)
	s.JSONEq(`{"x":1,"y":2}`, string(vp.MoveData))
	s.Equal(s.clock.Now(), vp.Timestamp)

	peer := s.peer.EventsNamed(model.EventPlayerMove)
	s.Require().Len(peer, 1)
	pp := peer[0].Payload.(model.PlayerMovePayload)
	s.Equal(model.PlayerID("p1"), pp.PlayerID)
	s.JSONEq(`{"x":1,"y":2}`, string(pp.MoveData))
}

func (s *ServiceSuite) TestPeerPayloadOmitsConnectionID() {
	s.service.Relay(s.ctx, "p1", "conn1", json.RawMessage(`{}`))

	peer := s.peer.EventsNamed(model.EventPlayerMove)
	s.Require().Len(peer, 1)

	// The peer payload type carries no connection identity at all
	raw, err := json.Marshal(peer[0].Payload)
	s.Require().NoError(err)
	s.NotContains(string(raw), "connectionId")
}

func (s *ServiceSuite) TestRelayWithNoValidatorsStillReachesPeers() {
	s.router.LeaveAll(s.validator.ID())

	s.service.Relay(s.ctx, "p1", "conn1", json.RawMessage(`{}`))

	s.Empty(s.validator.Events())
	s.Len(s.peer.EventsNamed(model.EventPlayerMove), 1)
}

func (s *ServiceSuite) TestOpaqueMoveDataPassedThrough() {
	// No structural knowledge of the payload is required; bytes pass through
	move := json.RawMessage(`"just a string"`)

	s.service.Relay(s.ctx, "p1", "conn1", move)

	validate := s.validator.EventsNamed(model.EventValidateMove)
	s.Require().Len(validate, 1)
	vp := validate[0].Payload.(model.ValidateMovePayload)
	s.Equal(string(move), string(vp.MoveData))
}
