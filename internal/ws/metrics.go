package ws

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gamehub/internal/model"
)

// Metrics with bounded cardinality: labels come from fixed role/event/group
// classes, never from player or connection ids.
var (
	connectionsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hub_connections_active",
		Help: "Currently active hub connections by role",
	}, []string{"role"})

	connectionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hub_connections_rejected_total",
		Help: "Connections rejected before registration",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "upgrade"

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hub_events_total",
		Help: "Inbound hub events by name",
	}, []string{"event"})

	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hub_deliveries_total",
		Help: "Broadcast delivery attempts by group class and outcome",
	}, []string{"group", "outcome"}) // outcome: "sent", "dropped"

	sendBufferDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_send_buffer_dropped_total",
		Help: "Outbound messages dropped because a client buffer was full",
	})
)

// groupClass collapses per-player groups into a single label value
func groupClass(group model.GroupName) string {
	if strings.HasPrefix(string(group), "Player_") {
		return "player_direct"
	}
	return string(group)
}

// ObserveDelivery records a router delivery attempt
func ObserveDelivery(group model.GroupName, ok bool) {
	outcome := "sent"
	if !ok {
		outcome = "dropped"
	}
	deliveriesTotal.WithLabelValues(groupClass(group), outcome).Inc()
}
