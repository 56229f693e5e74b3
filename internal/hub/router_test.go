package hub

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"gamehub/internal/model"
	"gamehub/internal/testutil"
)

type RouterSuite struct {
	suite.Suite
	registry *Registry
	router   *Router
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.registry = NewRegistry(testutil.NopLogger())
	s.router = NewRouter(s.registry, testutil.NopLogger())
}

func (s *RouterSuite) register(id string, role model.Role, playerID model.PlayerID) *fakeConn {
	conn := newFakeConn(id)
	s.registry.Register(conn, role, playerID)
	return conn
}

func (s *RouterSuite) TestJoinAndResolve() {
	conn := s.register("c1", model.RolePlayer, "p1")
	s.router.Join(conn.id, model.GroupPlayers)

	conns := s.router.Resolve(model.GroupPlayers)
	s.Len(conns, 1)
	s.Equal(1, s.router.MemberCount(model.GroupPlayers))
}

func (s *RouterSuite) TestDoubleJoinLeavesSingleMembership() {
	conn := s.register("c1", model.RolePlayer, "p1")
	s.router.Join(conn.id, model.GroupPlayers)
	s.router.Join(conn.id, model.GroupPlayers)

	s.Equal(1, s.router.MemberCount(model.GroupPlayers))
}

func (s *RouterSuite) TestLeaveRemovesEmptyGroup() {
	conn := s.register("c1", model.RolePlayer, "p1")
	s.router.Join(conn.id, model.GroupPlayers)
	s.router.Leave(conn.id, model.GroupPlayers)

	s.Equal(0, s.router.MemberCount(model.GroupPlayers))
	s.Empty(s.router.Resolve(model.GroupPlayers))
}

func (s *RouterSuite) TestLeaveAll() {
	conn := s.register("c1", model.RolePlayer, "p1")
	s.router.Join(conn.id, model.GroupPlayers)
	s.router.Join(conn.id, model.PlayerGroup("p1"))

	s.router.LeaveAll(conn.id)

	s.Equal(0, s.router.MemberCount(model.GroupPlayers))
	s.Equal(0, s.router.MemberCount(model.PlayerGroup("p1")))
}

func (s *RouterSuite) TestSendReachesOnlyGroupMembers() {
	member := s.register("c1", model.RoleDashboard, "")
	outsider := s.register("c2", model.RolePlayer, "p2")
	s.router.Join(member.id, model.GroupDashboard)
	s.router.Join(outsider.id, model.GroupPlayers)

	s.router.Send(model.GroupDashboard, model.EventScoreUpdate, "payload")

	s.Len(member.events(), 1)
	s.Equal(model.EventScoreUpdate, member.events()[0].Event)
	s.Empty(outsider.events())
}

func (s *RouterSuite) TestSendToUnknownGroupIsNoop() {
	s.NotPanics(func() {
		s.router.Send("NoSuchGroup", model.EventScoreUpdate, nil)
	})
}

func (s *RouterSuite) TestSendSkipsUnregisteredMember() {
	gone := s.register("c1", model.RolePlayer, "p1")
	alive := s.register("c2", model.RolePlayer, "p2")
	s.router.Join(gone.id, model.GroupPlayers)
	s.router.Join(alive.id, model.GroupPlayers)

	// Simulate a disconnect that removed the connection but not yet the
	// membership
	s.registry.Unregister(gone.id)

	s.router.Send(model.GroupPlayers, model.EventPlayerMove, "payload")

	s.Empty(gone.events())
	s.Len(alive.events(), 1)
}

func (s *RouterSuite) TestFailedDeliveryDoesNotBlockOthers() {
	failing := s.register("c1", model.RolePlayer, "p1")
	failing.failWith = errors.New("buffer full")
	healthy := s.register("c2", model.RolePlayer, "p2")
	s.router.Join(failing.id, model.GroupPlayers)
	s.router.Join(healthy.id, model.GroupPlayers)

	s.router.Send(model.GroupPlayers, model.EventPlayerMove, "payload")

	s.Len(healthy.events(), 1)
}

func (s *RouterSuite) TestDeliveryObserver() {
	var mu sync.Mutex
	outcomes := map[bool]int{}
	s.router.SetDeliveryObserver(func(_ model.GroupName, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		outcomes[ok]++
	})

	failing := s.register("c1", model.RolePlayer, "p1")
	failing.failWith = errors.New("buffer full")
	healthy := s.register("c2", model.RolePlayer, "p2")
	s.router.Join(failing.id, model.GroupPlayers)
	s.router.Join(healthy.id, model.GroupPlayers)

	s.router.Send(model.GroupPlayers, model.EventPlayerMove, "payload")

	s.Equal(1, outcomes[true])
	s.Equal(1, outcomes[false])
}

func (s *RouterSuite) TestSendTo() {
	conn := s.register("c1", model.RoleValidator, "")

	s.router.SendTo(conn.id, model.EventBanned, "payload")

	s.Len(conn.events(), 1)
	s.Equal(model.EventBanned, conn.events()[0].Event)
}

func (s *RouterSuite) TestSendToUnknownConnectionIsNoop() {
	s.NotPanics(func() {
		s.router.SendTo("never-registered", model.EventBanned, nil)
	})
}

func (s *RouterSuite) TestConcurrentChurnDuringSend() {
	const n = 32
	conns := make([]*fakeConn, n)
	for i := range conns {
		conns[i] = s.register(string(rune('a'+i%26))+string(rune('0'+i/26)), model.RolePlayer, "p")
		s.router.Join(conns[i].id, model.GroupPlayers)
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.router.Send(model.GroupPlayers, model.EventPlayerMove, i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.router.Leave(conns[i%n].id, model.GroupPlayers)
			s.router.Join(conns[i%n].id, model.GroupPlayers)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.router.Resolve(model.GroupPlayers)
		}
	}()
	wg.Wait()
}
