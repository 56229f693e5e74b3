package hub

import (
	"log/slog"
	"sync"

	"gamehub/internal/model"
)

// Conn is the transport-side handle the hub delivers events through.
// Deliver is expected to be asynchronous and non-blocking; the transport owns
// buffering and may drop when a client cannot keep up.
type Conn interface {
	ID() model.ConnectionID
	Deliver(event model.EventName, payload any) error
	Close() error
}

// Registration describes a live connection's classification
type Registration struct {
	Role     model.Role
	PlayerID model.PlayerID
}

// Registry tracks every live connection, its role, and its player identity.
// It owns connection lifetime; groups reference connections only through it,
// so membership can never outlive the owning connection.
type Registry struct {
	mu     sync.RWMutex
	conns  map[model.ConnectionID]*entry
	logger *slog.Logger
}

type entry struct {
	conn Conn
	reg  Registration
}

// NewRegistry creates an empty connection registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns:  make(map[model.ConnectionID]*entry),
		logger: logger.With(slog.String("component", "registry")),
	}
}

// Register records a live connection. Registering the same connection handle
// twice is idempotent: the original registration is kept and its id returned.
// A player role with an empty player id is accepted as an anonymous member
// with no default group membership.
func (r *Registry) Register(conn Conn, role model.Role, playerID model.PlayerID) model.ConnectionID {
	id := conn.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[id]; ok {
		return id
	}

	r.conns[id] = &entry{
		conn: conn,
		reg:  Registration{Role: role, PlayerID: playerID},
	}

	r.logger.Info("connection registered",
		slog.String("connection_id", string(id)),
		slog.String("role", string(role)),
		slog.String("player_id", string(playerID)),
		slog.Int("total_connections", len(r.conns)),
	)
	return id
}

// Unregister removes a connection. It is safe to call for a connection that
// never completed registration.
func (r *Registry) Unregister(id model.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[id]; !ok {
		return
	}
	delete(r.conns, id)

	r.logger.Info("connection unregistered",
		slog.String("connection_id", string(id)),
		slog.Int("total_connections", len(r.conns)),
	)
}

// Lookup returns a connection's registration
func (r *Registry) Lookup(id model.ConnectionID) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return Registration{}, false
	}
	return e.reg, true
}

// Conn returns the live connection handle, or false if it has been removed
func (r *Registry) Conn(id model.ConnectionID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// DefaultGroups returns the broadcast groups a connection joins on connect,
// based on its role. A player with no player id joins nothing.
func DefaultGroups(role model.Role, playerID model.PlayerID) []model.GroupName {
	switch role {
	case model.RoleDashboard:
		return []model.GroupName{model.GroupDashboard}
	case model.RoleValidator:
		return []model.GroupName{model.GroupValidators}
	default:
		if playerID == "" {
			return nil
		}
		return []model.GroupName{model.PlayerGroup(playerID), model.GroupPlayers}
	}
}
