package hub

import (
	"log/slog"
	"sync"

	"gamehub/internal/model"
)

// Router maintains named broadcast groups and resolves group sends into
// per-connection deliveries. Groups are created lazily on first join and
// removed when their last member leaves; resolving or sending to an unknown
// group is a harmless no-op.
type Router struct {
	mu       sync.RWMutex
	groups   map[model.GroupName]map[model.ConnectionID]struct{}
	registry *Registry
	logger   *slog.Logger

	// onDelivery, when set, observes every delivery attempt (for metrics)
	onDelivery func(group model.GroupName, ok bool)
}

// NewRouter creates a router resolving liveness through the given registry
func NewRouter(registry *Registry, logger *slog.Logger) *Router {
	return &Router{
		groups:   make(map[model.GroupName]map[model.ConnectionID]struct{}),
		registry: registry,
		logger:   logger.With(slog.String("component", "router")),
	}
}

// SetDeliveryObserver installs a callback invoked after each delivery attempt
func (r *Router) SetDeliveryObserver(fn func(group model.GroupName, ok bool)) {
	r.onDelivery = fn
}

// Join adds a connection to a group, creating the group if needed. Joining a
// group twice leaves a single membership.
func (r *Router) Join(id model.ConnectionID, group model.GroupName) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[group]
	if !ok {
		members = make(map[model.ConnectionID]struct{})
		r.groups[group] = members
	}
	members[id] = struct{}{}
}

// Leave removes a connection from a group
func (r *Router) Leave(id model.ConnectionID, group model.GroupName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(id, group)
}

// LeaveAll removes a connection from every group it belongs to. The transport
// calls this on disconnect, before unregistering.
func (r *Router) LeaveAll(id model.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for group := range r.groups {
		r.leaveLocked(id, group)
	}
}

func (r *Router) leaveLocked(id model.ConnectionID, group model.GroupName) {
	members, ok := r.groups[group]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.groups, group)
	}
}

// Resolve returns the live connections currently in a group
func (r *Router) Resolve(group model.GroupName) []Conn {
	ids := r.snapshot(group)
	conns := make([]Conn, 0, len(ids))
	for _, id := range ids {
		if conn, ok := r.registry.Conn(id); ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

// MemberCount returns the current size of a group
func (r *Router) MemberCount(group model.GroupName) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}

// Send delivers an event to every live member of a group at call time.
// Delivery is fire-and-forget per member: members that disconnect mid-send
// are skipped, failures are logged and swallowed, and no member's failure
// delays delivery to the rest.
func (r *Router) Send(group model.GroupName, event model.EventName, payload any) {
	ids := r.snapshot(group)

	for _, id := range ids {
		conn, ok := r.registry.Conn(id)
		if !ok {
			// Disconnected between snapshot and delivery
			continue
		}
		err := conn.Deliver(event, payload)
		if err != nil {
			r.logger.Warn("delivery failed",
				slog.String("group", string(group)),
				slog.String("event", string(event)),
				slog.String("connection_id", string(id)),
				slog.Any("error", err),
			)
		}
		if r.onDelivery != nil {
			r.onDelivery(group, err == nil)
		}
	}
}

// SendTo delivers an event to a single connection, with the same
// fire-and-forget semantics as Send.
func (r *Router) SendTo(id model.ConnectionID, event model.EventName, payload any) {
	conn, ok := r.registry.Conn(id)
	if !ok {
		return
	}
	if err := conn.Deliver(event, payload); err != nil {
		r.logger.Warn("delivery failed",
			slog.String("event", string(event)),
			slog.String("connection_id", string(id)),
			slog.Any("error", err),
		)
	}
}

// snapshot copies a group's membership under the read lock, so delivery runs
// without holding it
func (r *Router) snapshot(group model.GroupName) []model.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.groups[group]
	ids := make([]model.ConnectionID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}
